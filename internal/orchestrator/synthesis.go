package orchestrator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mystic-arcana/oracle/internal/tarot"
)

var spreadIntroductions = map[tarot.SpreadType]string{
	tarot.SpreadSingle:       "The universe has chosen a single, powerful message for you today.",
	tarot.SpreadThreeCard:    "Your past, present, and future dance together in perfect harmony, each informing the others.",
	tarot.SpreadCelticCross:  "The ancient Celtic Cross reveals the intricate web of influences surrounding your question.",
	tarot.SpreadHorseshoe:    "Like a horseshoe's protective embrace, these cards offer guidance and fortune.",
	tarot.SpreadRelationship: "The sacred dance of connection unfolds before us, revealing the deeper truths of the heart.",
	tarot.SpreadCustom:       "This custom spread reveals unique insights tailored specifically to your journey.",
}

// Narrative weaves the drawn cards into the opening of a reading.
func Narrative(cards []tarot.Card, spread tarot.SpreadType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Beloved seeker, as I gaze upon your %s spread, ", strings.Replace(string(spread), "-", " ", 1))
	b.WriteString("I see a beautiful tapestry of wisdom woven by the cosmic forces. ")
	if intro, ok := spreadIntroductions[spread]; ok {
		b.WriteString(intro)
	} else {
		b.WriteString("The cards have arranged themselves in a pattern of profound significance.")
	}
	b.WriteString("\n\n")

	switch len(cards) {
	case 1:
		fmt.Fprintf(&b, "%s speaks to you with singular clarity, offering the precise guidance your soul needs at this moment.", cards[0].Name)
	case 3:
		fmt.Fprintf(&b, "I see how %s has shaped your journey, leading to the current energy of %s, which now opens the path toward %s.",
			cards[0].Name, cards[1].Name, cards[2].Name)
	default:
		major, minor := 0, 0
		for _, c := range cards {
			switch c.Arcana {
			case tarot.ArcanaMajor:
				major++
			case tarot.ArcanaMinor:
				minor++
			}
		}
		if major > 0 {
			label := "the Major Arcana"
			if major > 1 {
				label = "Major Arcana cards"
			}
			fmt.Fprintf(&b, "The presence of %s signals that significant spiritual themes are at play. ", label)
		}
		if minor > 0 {
			b.WriteString("The Minor Arcana cards speak to the practical aspects of your journey, offering concrete guidance for your daily path.")
		}
	}

	b.WriteString("\n\nLet me share what the cards reveal...")
	return b.String()
}

var commonThemeWords = []string{"growth", "transformation", "love", "wisdom", "change", "journey", "spiritual"}

// CommonThemes returns up to three theme words found in at least half of the
// interpretations, in vocabulary order. Missing interpretations are ignored.
func CommonThemes(interpretations []*tarot.Interpretation) []string {
	present := slices.DeleteFunc(slices.Clone(interpretations), func(i *tarot.Interpretation) bool { return i == nil })
	if len(present) == 0 {
		return nil
	}
	need := (len(present) + 1) / 2

	var themes []string
	for _, word := range commonThemeWords {
		count := 0
		for _, in := range present {
			if strings.Contains(strings.ToLower(in.PersonalizedGuidance), word) ||
				strings.Contains(strings.ToLower(in.SpiritualWisdom), word) {
				count++
			}
		}
		if count >= need {
			themes = append(themes, word)
		}
	}
	if len(themes) > 3 {
		themes = themes[:3]
	}
	return themes
}

// OverallGuidance closes a reading with the themes the cards share.
func OverallGuidance(interpretations []*tarot.Interpretation) string {
	var b strings.Builder
	b.WriteString("As I weave together the wisdom of your spread, several key themes emerge. ")
	if themes := CommonThemes(interpretations); len(themes) > 0 {
		fmt.Fprintf(&b, "The cards speak consistently of %s, suggesting these are the areas where the universe seeks your attention. ", strings.Join(themes, ", "))
	}
	b.WriteString("\n\nRemember, precious soul, that you are both the author and the hero of your story. ")
	b.WriteString("These cards do not dictate your future; they illuminate the path you are already walking ")
	b.WriteString("and empower you to walk it with greater consciousness and grace. ")
	b.WriteString("\n\nTrust in your inner wisdom, for it resonates with the same cosmic intelligence ")
	b.WriteString("that speaks through these ancient symbols. Your journey is unfolding exactly as it should.")
	return b.String()
}

var spiritualCards = []string{"The High Priestess", "The Hermit", "The Star", "The Moon", "The Sun", "Judgment", "The World"}

// SpiritualInsight names the first deeply spiritual card of the spread, if any.
func SpiritualInsight(cards []tarot.Card) string {
	var b strings.Builder
	b.WriteString("On a deeper spiritual level, this reading reveals that you are being called ")
	b.WriteString("to embrace a new level of consciousness and self-understanding. ")
	for _, c := range cards {
		if slices.Contains(spiritualCards, c.Name) {
			fmt.Fprintf(&b, "The presence of %s particularly emphasizes the spiritual dimensions of your current experience. ", c.Name)
			break
		}
	}
	b.WriteString("\n\nThe universe is inviting you to trust in the perfect timing of your awakening. ")
	b.WriteString("Every experience, every challenge, every moment of joy is part of your soul's ")
	b.WriteString("carefully orchestrated curriculum for growth and expansion.")
	return b.String()
}

func collect(interpretations []*tarot.Interpretation) []tarot.Interpretation {
	out := make([]tarot.Interpretation, 0, len(interpretations))
	for _, in := range interpretations {
		if in != nil {
			out = append(out, *in)
		}
	}
	return out
}
