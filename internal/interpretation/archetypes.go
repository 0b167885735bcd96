package interpretation

import (
	"strings"

	"github.com/mystic-arcana/oracle/internal/tarot"
)

type archetype struct {
	Essence           string
	Message           string
	PositionalMeaning string
}

var majorArchetypes = map[string]archetype{
	"The Fool": {
		Essence:           "The Innocent Wanderer",
		Message:           "Your soul calls you to embrace new beginnings with childlike wonder.",
		PositionalMeaning: "representing pure potential and the courage to step into the unknown.",
	},
	"The Magician": {
		Essence:           "The Divine Creator",
		Message:           "You possess all the tools needed to manifest your deepest desires.",
		PositionalMeaning: "channeling focused will and creative power into reality.",
	},
	"The High Priestess": {
		Essence:           "The Sacred Keeper of Mysteries",
		Message:           "Your intuitive wisdom holds keys to profound spiritual understanding.",
		PositionalMeaning: "guiding you to trust the whispers of your inner knowing.",
	},
	"Justice": {
		Essence:           "The Divine Balancer",
		Message:           "The universe seeks to restore equilibrium through your conscious choices.",
		PositionalMeaning: "bringing clarity to moral decisions and karmic resolution.",
	},
}

var suitArchetypes = map[string]archetype{
	"cups": {
		Essence:           "The Heart's Sacred Waters",
		Message:           "Emotional depths and spiritual love flow through this moment.",
		PositionalMeaning: "inviting you to honor your feelings and spiritual connections.",
	},
	"pentacles": {
		Essence:           "The Earth's Abundant Gifts",
		Message:           "Material manifestation and practical wisdom ground your spiritual path.",
		PositionalMeaning: "supporting your journey toward material and spiritual prosperity.",
	},
	"swords": {
		Essence:           "The Mind's Sharp Clarity",
		Message:           "Mental power and clear communication cut through illusion.",
		PositionalMeaning: "offering intellectual breakthrough and decisive action.",
	},
	"wands": {
		Essence:           "The Fire of Divine Inspiration",
		Message:           "Creative passion and spiritual enthusiasm ignite your soul's purpose.",
		PositionalMeaning: "fueling your creative expression and spiritual growth.",
	},
}

var defaultArchetype = archetype{
	Essence:           "The Sacred Teacher",
	Message:           "This card carries profound wisdom for your spiritual journey.",
	PositionalMeaning: "offering guidance tailored to your soul's current needs.",
}

func archetypeFor(card tarot.Card) archetype {
	if a, ok := majorArchetypes[card.Name]; ok {
		return a
	}
	if a, ok := suitArchetypes[strings.ToLower(card.Suit)]; ok {
		return a
	}
	return defaultArchetype
}
