package interpretation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/memory"
)

func readingNote(t *testing.T, at time.Time, cards []string, themes ...string) memory.Note {
	t.Helper()
	p := memory.Payload{
		ReadingSummary:   &memory.ReadingSummary{Cards: cards, Timestamp: at},
		LearningInsights: &memory.LearningInsights{ThemesIdentified: themes},
	}
	content, err := p.Encode()
	require.NoError(t, err)
	return memory.Note{Content: content, Timestamp: at}
}

func questionNote(t *testing.T, themes ...string) memory.Note {
	t.Helper()
	p := memory.Payload{
		QuestionData:    &memory.QuestionData{Question: "q", Response: "r"},
		InsightAnalysis: &memory.InsightAnalysis{PotentialThemes: themes},
	}
	content, err := p.Encode()
	require.NoError(t, err)
	return memory.Note{Content: content}
}

func TestAnalyzeMemories_Empty(t *testing.T) {
	got := AnalyzeMemories("The Star", nil)

	assert.NotNil(t, got.PreviousEncounters)
	assert.NotNil(t, got.RecurringThemes)
	assert.Empty(t, got.PreviousEncounters)
	assert.Empty(t, got.RecurringThemes)
	assert.Empty(t, got.ProgressionPattern)
}

func TestAnalyzeMemories_SkipsMalformedNotes(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	notes := []memory.Note{
		{Content: "not json"},
		{Content: ""},
		readingNote(t, base, []string{"The Star"}, "healing"),
		{Content: `{"reading_summary": 7}`},
	}

	got := AnalyzeMemories("The Star", notes)

	require.Len(t, got.PreviousEncounters, 1)
	assert.Equal(t, []string{"healing"}, got.PreviousEncounters[0].Themes)
	assert.Equal(t, base, got.PreviousEncounters[0].Timestamp)
	assert.Equal(t, []string{"healing"}, got.RecurringThemes)
}

func TestAnalyzeMemories_RecurringThemesRanked(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	notes := []memory.Note{
		readingNote(t, base, []string{"The Moon"}, "love", "growth"),
		readingNote(t, base.Add(time.Hour), []string{"The Sun"}, "career", "growth"),
		questionNote(t, "career", "fear"),
		readingNote(t, base.Add(2*time.Hour), []string{"Death"}, "love"),
		questionNote(t, "spirituality"),
	}

	got := AnalyzeMemories("The Fool", notes)

	// love and growth appear twice; ties keep first-seen order.
	assert.Equal(t, []string{"love", "growth", "career"}, got.RecurringThemes)
	assert.NotContains(t, got.RecurringThemes, "fear")
	assert.Equal(t, progressions["Death"]["The Fool"], got.ProgressionPattern)
}

func TestAnalyzeMemories_AnswersDoNotOutrankReadingThemes(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	notes := []memory.Note{
		readingNote(t, base, []string{"The Tower"}, "transformation"),
		questionNote(t, "clarity"),
		questionNote(t, "clarity"),
	}

	got := AnalyzeMemories("Ace of Swords", notes)

	assert.Equal(t, []string{"transformation"}, got.RecurringThemes)
}

func TestAnalyzeMemories_EncountersNewestFirst(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	notes := []memory.Note{
		readingNote(t, base, []string{"The Star", "The Tower"}, "hope"),
		readingNote(t, base.Add(48*time.Hour), []string{"The Moon", "The Star"}, "dreams"),
		readingNote(t, base.Add(24*time.Hour), []string{"Death"}, "endings"),
	}

	got := AnalyzeMemories("The Star", notes)

	require.Len(t, got.PreviousEncounters, 2)
	assert.Equal(t, []string{"dreams"}, got.PreviousEncounters[0].Themes)
	assert.Equal(t, []string{"hope"}, got.PreviousEncounters[1].Themes)
}

func TestAnalyzeMemories_MostRecentPriorCardWins(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	notes := []memory.Note{
		readingNote(t, base, []string{"The Hermit"}),
		readingNote(t, base.Add(time.Hour), []string{"Death", "The Tower"}),
	}

	// "The Fool" only follows Death, "The Sun" only follows The Hermit.
	assert.Equal(t, progressions["Death"]["The Fool"], AnalyzeMemories("The Fool", notes).ProgressionPattern)
	assert.Equal(t, progressions["The Hermit"]["The Sun"], AnalyzeMemories("The Sun", notes).ProgressionPattern)

	assert.Equal(t, progressions["The Tower"]["The Star"], AnalyzeMemories("The Star", notes).ProgressionPattern)
}

func TestAnalyzeMemories_FallsBackToNoteTimestamp(t *testing.T) {
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	p := memory.Payload{ReadingSummary: &memory.ReadingSummary{Cards: []string{"Justice"}}}
	content, err := p.Encode()
	require.NoError(t, err)

	got := AnalyzeMemories("Justice", []memory.Note{{Content: content, Timestamp: at}})

	require.Len(t, got.PreviousEncounters, 1)
	assert.Equal(t, at, got.PreviousEncounters[0].Timestamp)
	assert.Equal(t, []string{}, got.PreviousEncounters[0].Themes)
}
