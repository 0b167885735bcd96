package interpretation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

const (
	baseConfidence      = 0.6
	provenanceLabel     = "Mystic Arcana Knowledge Pool"
	traditionReference  = "Rider-Waite Tarot Tradition"
	defaultUprightText  = "This card brings positive energy to your path"
	defaultReversedText = "This card's reversed energy asks for inner reflection"
)

type Synthesizer struct {
	phrases PhraseProvider
	reader  string
	now     func() time.Time
}

type Option func(*Synthesizer)

func WithReader(name string) Option {
	return func(s *Synthesizer) { s.reader = name }
}

func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

func NewSynthesizer(phrases PhraseProvider, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		phrases: phrases,
		reader:  "Sophia",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interpret produces the guidance for the card at position index. entry may be nil
// when the lookup had no base interpretation; memories may be empty.
func (s *Synthesizer) Interpret(card tarot.Card, entry *Entry, position string, rc tarot.ReadingContext, index int, memories []memory.Note) tarot.Interpretation {
	base := FallbackInterpretation(card, position)
	var hooks []Hook
	spiritual := fmt.Sprintf("%s carries the spiritual teaching that every experience serves your highest evolution. In the %s, this card reminds you that you are exactly where you need to be for your soul's growth.", card.Name, position)
	practical := fmt.Sprintf("Consider how the energy of %s can be practically applied in your daily life. Take one small action today that honors the wisdom this card offers in your %s.", card.Name, position)
	secondRef := s.reader + "'s Ancient Wisdom"

	if entry != nil {
		if entry.BaseMeaning != "" {
			base = entry.BaseMeaning
		}
		hooks = entry.PersonalizationHooks
		if entry.SpiritualWisdom != "" {
			spiritual = entry.SpiritualWisdom
		}
		if entry.ActionableReflection != "" {
			practical = entry.ActionableReflection
		}
		if entry.ID != "" {
			secondRef = entry.ID
		}
	}

	insights := AnalyzeMemories(card.Name, memories)

	return tarot.Interpretation{
		BaseInterpretation:   base,
		PersonalizedGuidance: s.guidance(card, base, position, hooks, insights, len(memories) > 0),
		SpiritualWisdom:      spiritual,
		PracticalAdvice:      practical,
		ReaderNotes:          s.readerNotes(card, entry != nil),
		ConfidenceScore:      Confidence(entry, rc.UserID != ""),
		SourceReferences:     []string{provenanceLabel, secondRef, traditionReference},
	}
}

// Confidence is 0.6, plus 0.3 for a base interpretation, 0.1 for a known user and
// 0.1 for personalization hooks, capped at 1.
func Confidence(entry *Entry, knownUser bool) float64 {
	score := baseConfidence
	if entry != nil {
		score += 0.3
	}
	if knownUser {
		score += 0.1
	}
	if entry != nil && len(entry.PersonalizationHooks) > 0 {
		score += 0.1
	}
	return min(score, 1.0)
}

// FallbackInterpretation is used when no base interpretation exists for the card and position.
func FallbackInterpretation(card tarot.Card, position string) string {
	meaning := card.Meaning.Upright
	if meaning == "" {
		meaning = defaultUprightText
	}
	if card.IsReversed {
		meaning = card.Meaning.Reversed
		if meaning == "" {
			meaning = defaultReversedText
		}
	}
	return fmt.Sprintf("In the %s position, %s speaks to %s. The ancient wisdom of this card invites you to consider how its energy applies to this aspect of your journey.",
		position, card.Name, strings.ToLower(meaning))
}

func (s *Synthesizer) guidance(card tarot.Card, base, position string, hooks []Hook, insights MemoryInsights, hasMemories bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✨ **Beloved Soul**, %s as **%s** emerges in your **%s**.\n\n", lowerFirst(s.phrases.SignaturePhrase()), card.Name, position)
	fmt.Fprintf(&b, "🌙 **Cosmic Timing**: %s This celestial moment amplifies %s's profound message.\n\n", TemporalInsight(s.now()), card.Name)

	if len(insights.PreviousEncounters) > 0 {
		last := insights.PreviousEncounters[0]
		fmt.Fprintf(&b, "🔮 **Sacred Recognition**: Our soul's journey together reveals **%s** returning to you, ", card.Name)
		if len(last.Themes) > 0 {
			fmt.Fprintf(&b, "resonant with your previous exploration of themes including %s. ", strings.Join(last.Themes, ", "))
		} else {
			b.WriteString("resonant with the lessons it brought you before. ")
		}
		b.WriteString("The universe invites you to revisit these sacred patterns with the wisdom you've gained since our last encounter.\n\n")
	} else {
		fmt.Fprintf(&b, "🌟 **First Sacred Encounter**: This marks **%s**'s inaugural appearance in our mystical work together, ", card.Name)
		b.WriteString("signaling a significant new chapter unfolding in your spiritual evolution. Pay special attention to this divine initiation.\n\n")
	}

	a := archetypeFor(card)
	fmt.Fprintf(&b, "💜 **Archetypal Essence**: %s **%s** embodies the divine energy of *%s*, %s\n\n", a.Message, card.Name, a.Essence, a.PositionalMeaning)

	fmt.Fprintf(&b, "🌙 **Core Divine Message**: %s\n\n", base)

	if len(insights.RecurringThemes) > 0 {
		fmt.Fprintf(&b, "🔄 **Soul Pattern Recognition**: Your readings consistently illuminate the sacred theme of **%s**. ", insights.RecurringThemes[0])
		fmt.Fprintf(&b, "%s now appears as your spiritual teacher, offering divine keys to transform this recurring pattern ", card.Name)
		b.WriteString("into conscious mastery. The universe doesn't simply repeat lessons, it deepens and refines them for your highest growth.\n\n")
	}

	if insights.ProgressionPattern != "" {
		b.WriteString(insights.ProgressionPattern)
		b.WriteString(" ")
	}

	if len(hooks) > 0 && hooks[0].Interpretation != "" {
		fmt.Fprintf(&b, "Your soul's journey suggests that %s. ", lowerFirst(strings.TrimSuffix(hooks[0].Interpretation, ".")))
	}

	if hasMemories {
		b.WriteString("As I reflect on our journey together, I see how much you've grown in understanding. ")
		b.WriteString("Trust in this continued evolution, for each reading builds upon the last. ")
	} else {
		b.WriteString("Remember, dear one, that you carry within you all the wisdom needed to navigate this path. ")
		b.WriteString("Trust in the unfolding of your spiritual evolution. ")
	}

	return b.String()
}

func (s *Synthesizer) readerNotes(card tarot.Card, fromLookup bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's Notes: %s appeared with ", s.reader, card.Name)
	if fromLookup {
		b.WriteString("rich Knowledge Pool guidance, offering deep personalized insight. ")
	} else {
		b.WriteString("the pure energy of ancient wisdom, speaking directly to your soul. ")
	}
	if card.IsReversed {
		b.WriteString("The reversed position suggests a need for inner reflection and patience with your growth process.")
	} else {
		b.WriteString("The upright position indicates flowing energy and positive manifestation potential.")
	}
	return b.String()
}

// TemporalInsight describes the time of day and an approximate moon phase derived from the day of month.
func TemporalInsight(t time.Time) string {
	var insight string
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		insight = "The morning's fresh energy awakens new possibilities. "
	case h >= 12 && h < 17:
		insight = "The afternoon's focused power supports manifestation and action. "
	case h >= 17 && h < 21:
		insight = "The evening's reflective wisdom illuminates deeper understanding. "
	default:
		insight = "The night's mystical veil reveals hidden truths and inner knowing. "
	}

	switch d := t.Day(); {
	case d <= 7:
		insight += "Under the New Moon's blessing, this is a time for planting seeds of intention."
	case d <= 14:
		insight += "The Waxing Moon's growing light supports building and expanding your dreams."
	case d <= 21:
		insight += "The Full Moon's radiant power brings completion and profound revelation."
	default:
		insight += "The Waning Moon's gentle release supports letting go and inner healing."
	}
	return insight
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
