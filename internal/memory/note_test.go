package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &Payload{
		ReadingSummary: &ReadingSummary{
			ID:         "r1",
			SessionID:  "s1",
			Timestamp:  ts,
			SpreadType: "three-card",
			Cards:      []string{"The Tower", "The Star", "Ace of Swords"},
			Narrative:  "narrative",
			Guidance:   "guidance",
		},
		InteractionData: &InteractionData{
			UserID:    "u1",
			SessionID: "s1",
			Reader:    "sophia",
			Feedback:  &Feedback{Rating: 5, HelpfulCards: []string{"The Star"}},
		},
		LearningInsights: &LearningInsights{
			ThemesIdentified:       []string{"healing"},
			CardCombinations:       []string{"The Tower+The Star"},
			InterpretationQuality:  0.9,
			PersonalizationApplied: true,
		},
	}

	content, err := in.Encode()
	require.NoError(t, err)

	out, err := ParsePayload(content)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParsePayload_Errors(t *testing.T) {
	_, err := ParsePayload("")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = ParsePayload("{not json")
	assert.Error(t, err)
}

func TestParseAll_SkipsMalformed(t *testing.T) {
	notes := []Note{
		{ID: "1", Content: `{"question_data":{"question":"q","response":"r"}}`},
		{ID: "2", Content: "garbage"},
		{ID: "3", Content: ""},
		{ID: "4", Content: `{"conversation_data":{"session_id":"s"}}`},
	}

	parsed := ParseAll(notes)
	require.Len(t, parsed, 2)
	assert.Equal(t, "1", parsed[0].Note.ID)
	assert.Equal(t, "q", parsed[0].Payload.QuestionData.Question)
	assert.Equal(t, "4", parsed[1].Note.ID)
	assert.Equal(t, "s", parsed[1].Payload.ConversationData.SessionID)
}
