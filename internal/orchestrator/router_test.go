package orchestrator

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes_CoverEveryState(t *testing.T) {
	require.Len(t, routes, len(States))
	for _, s := range States {
		next, ok := Next(s)
		require.True(t, ok, "state %s has no route", s)
		assert.True(t, next.Valid(), "state %s leads outside the graph to %s", s, next)
	}
}

func TestRoutes_LinearWalk(t *testing.T) {
	want := []State{
		StateAwaitingDraw,
		StateRevealingCard1, StateInterpretingCard1, StateAwaitingInput1, StateInteractiveQuestion1,
		StateRevealingCard2, StateInterpretingCard2, StateAwaitingInput2, StateInteractiveQuestion2,
		StateRevealingCard3, StateInterpretingCard3, StateAwaitingInput3,
		StateFinalSynthesis,
		StateReadingComplete,
	}

	var walked []State
	s := StateAwaitingDraw
	for !s.Terminal() {
		require.False(t, slices.Contains(walked, s), "state %s visited twice", s)
		walked = append(walked, s)
		s, _ = Next(s)
	}
	walked = append(walked, s)

	if diff := cmp.Diff(want, walked); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestRoutes_NoQuestionForFinalCard(t *testing.T) {
	next, _ := Next(StateAwaitingInput3)
	assert.Equal(t, StateFinalSynthesis, next)
}

func TestCardIndex(t *testing.T) {
	tests := []struct {
		state State
		index int
	}{
		{StateRevealingCard1, 0},
		{StateInterpretingCard1, 0},
		{StateAwaitingInput1, 0},
		{StateInteractiveQuestion1, 0},
		{StateRevealingCard2, 1},
		{StateInteractiveQuestion2, 1},
		{StateRevealingCard3, 2},
		{StateAwaitingInput3, 2},
		{StateAwaitingDraw, 0},
		{StateFinalSynthesis, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.index, CardIndex(tt.state))
		})
	}
}

func TestState_Valid(t *testing.T) {
	assert.True(t, StateFinalSynthesis.Valid())
	assert.False(t, State("INTERACTIVE_QUESTION_3").Valid())
	assert.False(t, State("").Valid())
}

func TestRequiresInput(t *testing.T) {
	var needInput []State
	for _, s := range States {
		if requiresInput(s) {
			needInput = append(needInput, s)
		}
	}
	want := []State{
		StateAwaitingInput1, StateInteractiveQuestion1,
		StateAwaitingInput2, StateInteractiveQuestion2,
		StateAwaitingInput3,
	}
	if diff := cmp.Diff(want, needInput); diff != "" {
		t.Errorf("input states mismatch (-want +got):\n%s", diff)
	}
}
