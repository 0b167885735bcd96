// Package tarot defines the cards, spreads and readings shared by the oracle services.
package tarot

import "strings"

type Arcana string

const (
	ArcanaMajor Arcana = "major"
	ArcanaMinor Arcana = "minor"
)

// Meaning holds the traditional upright and reversed meaning text of a card.
type Meaning struct {
	Upright  string `json:"upright"`
	Reversed string `json:"reversed"`
}

// Card is a single drawn card together with its orientation.
type Card struct {
	Name       string  `json:"name" validate:"required"`
	Arcana     Arcana  `json:"arcana" validate:"omitempty,oneof=major minor"`
	Suit       string  `json:"suit,omitempty"`
	Meaning    Meaning `json:"meaning"`
	IsReversed bool    `json:"is_reversed"`
}

// Slug returns the lowercase, underscore separated card name used in keywords and tags.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// CardNames returns the names of cards in draw order.
func CardNames(cards []Card) []string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	return names
}
