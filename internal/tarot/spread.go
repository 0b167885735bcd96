package tarot

import "fmt"

// SpreadType names a layout. It fixes how many cards are drawn and the label of each position.
type SpreadType string

const (
	SpreadSingle       SpreadType = "single"
	SpreadThreeCard    SpreadType = "three-card"
	SpreadCelticCross  SpreadType = "celtic-cross"
	SpreadHorseshoe    SpreadType = "horseshoe"
	SpreadRelationship SpreadType = "relationship"
	SpreadCustom       SpreadType = "custom"
)

var spreadPositions = map[SpreadType][]string{
	SpreadSingle:    {"Your Guidance"},
	SpreadThreeCard: {"Past", "Present", "Future"},
	SpreadCelticCross: {
		"Present",
		"Challenge",
		"Distant Past",
		"Recent Past",
		"Possible Outcome",
		"Near Future",
		"Your Approach",
		"External",
		"Hopes & Fears",
		"Final Outcome",
	},
	SpreadHorseshoe:    {"Past", "Present", "Hidden Factors", "Advice", "Likely Outcome"},
	SpreadRelationship: {"You", "Them", "Connection", "Challenges", "Potential"},
	SpreadCustom:       {"Custom Position 1", "Custom Position 2", "Custom Position 3"},
}

// Valid reports whether s is a known spread.
func (s SpreadType) Valid() bool {
	_, ok := spreadPositions[s]
	return ok
}

// CardCount returns the number of cards the spread requires, or 0 for an unknown spread.
func (s SpreadType) CardCount() int {
	return len(spreadPositions[s])
}

// PositionName returns the semantic label of position index within the spread.
// Unknown spreads use "Position"; indexes past the layout use "Position N".
func PositionName(spread SpreadType, index int) string {
	positions, ok := spreadPositions[spread]
	if !ok {
		positions = []string{"Position"}
	}
	if index >= 0 && index < len(positions) {
		return positions[index]
	}
	return fmt.Sprintf("Position %d", index+1)
}
