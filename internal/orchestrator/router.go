package orchestrator

// State is a step of the reading conversation.
type State string

const (
	StateAwaitingDraw         State = "AWAITING_DRAW"
	StateRevealingCard1       State = "REVEALING_CARD_1"
	StateInterpretingCard1    State = "INTERPRETING_CARD_1"
	StateAwaitingInput1       State = "AWAITING_INPUT_1"
	StateInteractiveQuestion1 State = "INTERACTIVE_QUESTION_1"
	StateRevealingCard2       State = "REVEALING_CARD_2"
	StateInterpretingCard2    State = "INTERPRETING_CARD_2"
	StateAwaitingInput2       State = "AWAITING_INPUT_2"
	StateInteractiveQuestion2 State = "INTERACTIVE_QUESTION_2"
	StateRevealingCard3       State = "REVEALING_CARD_3"
	StateInterpretingCard3    State = "INTERPRETING_CARD_3"
	StateAwaitingInput3       State = "AWAITING_INPUT_3"
	StateFinalSynthesis       State = "FINAL_SYNTHESIS"
	StateReadingComplete      State = "READING_COMPLETE"
)

// ConversationCards is the number of cards a conversation walks through.
const ConversationCards = 3

// States lists every state in conversation order.
var States = []State{
	StateAwaitingDraw,
	StateRevealingCard1, StateInterpretingCard1, StateAwaitingInput1, StateInteractiveQuestion1,
	StateRevealingCard2, StateInterpretingCard2, StateAwaitingInput2, StateInteractiveQuestion2,
	StateRevealingCard3, StateInterpretingCard3, StateAwaitingInput3,
	StateFinalSynthesis,
	StateReadingComplete,
}

type phase int

const (
	phaseDraw phase = iota
	phaseReveal
	phaseInterpret
	phaseAwaitInput
	phaseQuestion
	phaseSynthesis
	phaseComplete
)

type route struct {
	phase     phase
	cardIndex int
	next      State
}

// routes is the whole transition graph. A state absent from it is unknown.
var routes = map[State]route{
	StateAwaitingDraw:         {phaseDraw, 0, StateRevealingCard1},
	StateRevealingCard1:       {phaseReveal, 0, StateInterpretingCard1},
	StateInterpretingCard1:    {phaseInterpret, 0, StateAwaitingInput1},
	StateAwaitingInput1:       {phaseAwaitInput, 0, StateInteractiveQuestion1},
	StateInteractiveQuestion1: {phaseQuestion, 0, StateRevealingCard2},
	StateRevealingCard2:       {phaseReveal, 1, StateInterpretingCard2},
	StateInterpretingCard2:    {phaseInterpret, 1, StateAwaitingInput2},
	StateAwaitingInput2:       {phaseAwaitInput, 1, StateInteractiveQuestion2},
	StateInteractiveQuestion2: {phaseQuestion, 1, StateRevealingCard3},
	StateRevealingCard3:       {phaseReveal, 2, StateInterpretingCard3},
	StateInterpretingCard3:    {phaseInterpret, 2, StateAwaitingInput3},
	StateAwaitingInput3:       {phaseAwaitInput, 2, StateFinalSynthesis},
	StateFinalSynthesis:       {phaseSynthesis, 0, StateReadingComplete},
	StateReadingComplete:      {phaseComplete, 0, StateReadingComplete},
}

// Valid reports whether s belongs to the conversation graph.
func (s State) Valid() bool {
	_, ok := routes[s]
	return ok
}

// Terminal reports whether no further turns are accepted in s.
func (s State) Terminal() bool {
	return s == StateReadingComplete
}

// CardIndex returns the zero-based card a state works on. States that are not
// tied to a card return 0.
func CardIndex(s State) int {
	return routes[s].cardIndex
}

// Next returns the state that follows s. The terminal state maps to itself.
func Next(s State) (State, bool) {
	r, ok := routes[s]
	return r.next, ok
}

func requiresInput(s State) bool {
	p := routes[s].phase
	return p == phaseAwaitInput || p == phaseQuestion
}
