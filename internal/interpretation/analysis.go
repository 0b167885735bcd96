package interpretation

import (
	"sort"
	"time"

	"github.com/mystic-arcana/oracle/internal/memory"
)

// Encounter is a past reading in which a card appeared.
type Encounter struct {
	Card      string    `json:"card"`
	Themes    []string  `json:"themes"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryInsights is what a user's history says about the current card.
type MemoryInsights struct {
	// PreviousEncounters is ordered newest first.
	PreviousEncounters []Encounter `json:"previous_encounters"`
	RecurringThemes    []string    `json:"recurring_themes"`
	ProgressionPattern string      `json:"progression_pattern,omitempty"`
}

// progressions maps a prior card to the cards it leads into.
var progressions = map[string]map[string]string{
	"The Tower": {
		"Ace of Swords":      "Remembering our previous discussions around The Tower and the sudden changes you were navigating, this new clarity may be the very tool you need to cut through old ways of thinking and build anew.",
		"The Star":           "After the upheaval of The Tower in your previous reading, The Star now brings the hope and healing you've been seeking.",
		"Three of Pentacles": "The foundation-shaking energy of The Tower you experienced before now gives way to collaborative rebuilding.",
	},
	"The Hermit": {
		"The Sun":     "Your period of introspection with The Hermit has led to this beautiful emergence into The Sun's radiant clarity.",
		"Two of Cups": "The wisdom you gained during your Hermit journey now blossoms into meaningful connection.",
	},
	"Death": {
		"Ace of Wands": "The transformation of Death you've been processing now ignites as pure creative potential in the Ace of Wands.",
		"The Fool":     "Having moved through Death's profound transformation, you now step forward as The Fool on a completely new journey.",
	},
}

const maxRecurringThemes = 3

type pastReading struct {
	cards     []string
	themes    []string
	timestamp time.Time
}

// AnalyzeMemories looks through memories for earlier appearances of card, the
// user's dominant themes and a known progression into card. Notes that do not
// parse are skipped.
func AnalyzeMemories(card string, memories []memory.Note) MemoryInsights {
	insights := MemoryInsights{
		PreviousEncounters: []Encounter{},
		RecurringThemes:    []string{},
	}

	var readings []pastReading
	counts := make(map[string]int)
	var order []string
	countTheme := func(theme string) {
		if _, seen := counts[theme]; !seen {
			order = append(order, theme)
		}
		counts[theme]++
	}

	for _, p := range memory.ParseAll(memories) {
		pl := p.Payload
		// Only completed readings carry themes of the seeker's history.
		if pl.ReadingSummary == nil {
			continue
		}
		var themes []string
		if pl.LearningInsights != nil {
			themes = pl.LearningInsights.ThemesIdentified
		}
		for _, t := range themes {
			countTheme(t)
		}
		ts := pl.ReadingSummary.Timestamp
		if ts.IsZero() {
			ts = p.Note.Timestamp
		}
		readings = append(readings, pastReading{cards: pl.ReadingSummary.Cards, themes: themes, timestamp: ts})
	}

	// Newest first; equal timestamps keep the later note first.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].timestamp.After(readings[j].timestamp)
	})

	for _, r := range readings {
		for _, c := range r.cards {
			if c == card {
				themes := r.themes
				if themes == nil {
					themes = []string{}
				}
				insights.PreviousEncounters = append(insights.PreviousEncounters, Encounter{Card: card, Themes: themes, Timestamp: r.timestamp})
				break
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxRecurringThemes {
		order = order[:maxRecurringThemes]
	}
	insights.RecurringThemes = append(insights.RecurringThemes, order...)

	insights.ProgressionPattern = progressionFor(card, readings)
	return insights
}

// progressionFor scans prior cards from the most recent reading backwards and
// returns the narrative of the first one that leads into card.
func progressionFor(card string, newestFirst []pastReading) string {
	for _, r := range newestFirst {
		for i := len(r.cards) - 1; i >= 0; i-- {
			if narrative, ok := progressions[r.cards[i]][card]; ok {
				return narrative
			}
		}
	}
	return ""
}
