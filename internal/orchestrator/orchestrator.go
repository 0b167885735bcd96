// Package orchestrator drives a reading conversation through its states, one turn at a time.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mystic-arcana/oracle/internal/interpretation"
	"github.com/mystic-arcana/oracle/internal/learning"
	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/metrics"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

// Learner receives what happens during a conversation. Every method is best-effort.
type Learner interface {
	RetrieveUserMemories(ctx context.Context, userID string) []memory.Note
	LogConversationTurn(ctx context.Context, rec learning.TurnRecord)
	LogInteractiveResponse(ctx context.Context, rec learning.InteractiveRecord)
	LogInteraction(ctx context.Context, userID string, reading *tarot.Reading, feedback *memory.Feedback)
	CheckAndIncrementLevel(ctx context.Context, userID string) learning.LevelResult
}

// TurnRequest advances the session SessionID from State. Cards and Context are
// only read when the session is created.
type TurnRequest struct {
	SessionID string                `json:"session_id"`
	State     State                 `json:"current_state"`
	UserInput string                `json:"user_input,omitempty"`
	Cards     []tarot.Card          `json:"cards,omitempty"`
	Context   *tarot.ReadingContext `json:"context,omitempty"`
}

// RevealedCard is the card a turn put on the table.
type RevealedCard struct {
	Card           tarot.Card            `json:"card"`
	Position       string                `json:"position"`
	Interpretation *tarot.Interpretation `json:"interpretation,omitempty"`
}

// TurnResult is what the presentation layer renders after a turn.
type TurnResult struct {
	SessionID           string                `json:"session_id"`
	Dialogue            string                `json:"dialogue"`
	NextState           State                 `json:"new_state"`
	Options             []Choice              `json:"options,omitempty"`
	InteractiveQuestion *Question             `json:"interactive_question,omitempty"`
	RevealedCard        *RevealedCard         `json:"revealed_card,omitempty"`
	FinalReading        *tarot.Reading        `json:"final_reading,omitempty"`
	Level               *learning.LevelResult `json:"level,omitempty"`
}

// Orchestrator owns the session store and applies turns to it.
type Orchestrator struct {
	sessions    *SessionStore
	validator   *Validator
	synthesizer *interpretation.Synthesizer
	lookup      interpretation.Lookup
	learner     Learner
	phrases     interpretation.PhraseProvider
	now         func() time.Time
}

type Option func(*Orchestrator)

func WithSessionStore(s *SessionStore) Option {
	return func(o *Orchestrator) { o.sessions = s }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(
	synthesizer *interpretation.Synthesizer,
	lookup interpretation.Lookup,
	learner Learner,
	phrases interpretation.PhraseProvider,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		sessions:    NewSessionStore(),
		validator:   NewValidator(),
		synthesizer: synthesizer,
		lookup:      lookup,
		learner:     learner,
		phrases:     phrases,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

// turn is the working state of one ProcessTurn call. Effects run only after the
// session has been committed.
type turn struct {
	session *Session
	input   string
	effects []func(context.Context)
}

func (t *turn) after(fn func(context.Context)) {
	t.effects = append(t.effects, fn)
}

// ProcessTurn applies one turn. Either the session advances to the returned
// state or it is left exactly as it was.
// A new session without an id is given one.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.SessionID == "" && req.State == StateAwaitingDraw {
		req.SessionID = uuid.New().String()
	}
	sess, _ := o.sessions.Get(req.SessionID)
	if err := o.validator.Validate(req, sess); err != nil {
		metrics.ReadingTurnErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}

	now := o.now()
	if sess == nil {
		sess = o.newSession(req, now)
	}
	if req.UserInput != "" {
		sess.Responses = append(sess.Responses, UserResponse{State: req.State, Input: req.UserInput, Timestamp: now})
	}

	t := &turn{session: sess, input: req.UserInput}
	result, err := o.dispatch(ctx, t)
	if err != nil {
		metrics.ReadingTurnErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}

	sess.State = result.NextState
	sess.CardIndex = CardIndex(sess.State)
	sess.Turns++
	sess.UpdatedAt = now
	if err := o.sessions.Commit(sess, req.State); err != nil {
		metrics.ReadingTurnErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}
	metrics.ReadingTurnsTotal.WithLabelValues(string(req.State)).Inc()

	o.logTurn(ctx, sess, req, result)
	for _, fn := range t.effects {
		fn(ctx)
	}

	result.SessionID = sess.ID
	return result, nil
}

func (o *Orchestrator) newSession(req TurnRequest, now time.Time) *Session {
	rc := *req.Context
	rc.SessionID = req.SessionID
	rc.Cards = req.Cards
	return &Session{
		ID:              req.SessionID,
		UserID:          rc.UserID,
		SpreadType:      rc.SpreadType,
		Cards:           req.Cards,
		State:           StateAwaitingDraw,
		Responses:       []UserResponse{},
		Interpretations: make([]*tarot.Interpretation, len(req.Cards)),
		Context:         rc,
		StartTime:       now,
		UpdatedAt:       now,
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, t *turn) (*TurnResult, error) {
	r, ok := routes[t.session.State]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, t.session.State)
	}
	switch r.phase {
	case phaseDraw:
		return o.handleAwaitingDraw(t)
	case phaseReveal:
		return o.handleRevealingCard(t, r.cardIndex)
	case phaseInterpret:
		return o.handleInterpretingCard(ctx, t, r.cardIndex)
	case phaseAwaitInput:
		return o.handleAwaitingInput(t, r.cardIndex)
	case phaseQuestion:
		return o.handleInteractiveQuestion(t, r.cardIndex)
	case phaseSynthesis:
		return o.handleFinalSynthesis(ctx, t)
	case phaseComplete:
		return nil, ErrSessionComplete
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownState, t.session.State)
}

func (o *Orchestrator) handleAwaitingDraw(t *turn) (*TurnResult, error) {
	return &TurnResult{
		Dialogue: fmt.Sprintf("Welcome, beautiful soul. %s as we begin this sacred journey together. "+
			"I have drawn three cards that hold the wisdom you seek. "+
			"Let us unveil them one by one, allowing each to speak its truth in its own time.", o.phrases.SignaturePhrase()),
		NextState: routes[StateAwaitingDraw].next,
		Options:   []Choice{choice("begin", "Begin the reading"), choice("pause", "Take a moment first")},
	}, nil
}

func (o *Orchestrator) handleRevealingCard(t *turn, index int) (*TurnResult, error) {
	sess := t.session
	card := sess.Cards[index]
	position := tarot.PositionName(sess.SpreadType, index)

	var dialogue string
	switch index {
	case 0:
		dialogue = fmt.Sprintf("I now reveal your first card: **%s** in the position of %s. "+
			"The energy of this card fills the space between us. Take a moment to feel its presence.", card.Name, position)
	case 1:
		dialogue = fmt.Sprintf("Your second card emerges: **%s** in the position of %s. "+
			"See how it dances with the wisdom of your first card, creating a deeper tapestry of meaning.", card.Name, position)
	default:
		dialogue = fmt.Sprintf("And now, your final card is revealed: **%s** in the position of %s. "+
			"The trinity is complete. Feel how all three cards now speak as one unified voice.", card.Name, position)
	}

	return &TurnResult{
		Dialogue:     dialogue,
		NextState:    routes[sess.State].next,
		RevealedCard: &RevealedCard{Card: card, Position: position},
		Options:      []Choice{choice("continue", "Continue"), choice("reflect", "Let me reflect on this")},
	}, nil
}

func (o *Orchestrator) handleInterpretingCard(ctx context.Context, t *turn, index int) (*TurnResult, error) {
	sess := t.session
	card := sess.Cards[index]
	position := tarot.PositionName(sess.SpreadType, index)

	in := o.interpret(ctx, card, position, sess.Context, index, o.learner.RetrieveUserMemories(ctx, sess.UserID))
	sess.Interpretations[index] = &in

	return &TurnResult{
		Dialogue:     in.PersonalizedGuidance,
		NextState:    routes[sess.State].next,
		RevealedCard: &RevealedCard{Card: card, Position: position, Interpretation: &in},
		Options: []Choice{
			choice("tell_more", "Tell me more"),
			choice("continue", "Continue to next step"),
			choice("reflect", "I need to reflect on this"),
		},
	}, nil
}

// interpret looks up the base interpretation and personalizes it. A failed
// lookup is treated as a miss.
func (o *Orchestrator) interpret(ctx context.Context, card tarot.Card, position string, rc tarot.ReadingContext, index int, memories []memory.Note) tarot.Interpretation {
	entry, err := o.lookup.Find(ctx, card.Name, string(rc.SpreadType), position)
	if err != nil {
		slog.Warn("orchestrator: interpretation lookup failed", "card", card.Name, "position", position, "error", err)
		entry = nil
	} else if entry == nil {
		slog.Debug("orchestrator: no base interpretation", "card", card.Name, "position", position)
	}
	return o.synthesizer.Interpret(card, entry, position, rc, index, memories)
}

func (o *Orchestrator) handleAwaitingInput(t *turn, index int) (*TurnResult, error) {
	sess := t.session
	next := routes[sess.State].next

	var dialogue string
	switch t.input {
	case "tell_more":
		if in := sess.Interpretations[index]; in != nil {
			dialogue = in.SpiritualWisdom + " " + in.PracticalAdvice
		} else {
			dialogue = "I feel your energy shifting as you process this wisdom."
		}
	case "continue":
		dialogue = "I sense you are ready to deepen our connection with this card's wisdom."
	case "reflect":
		dialogue = "Take all the time you need, dear one. The cards will wait patiently for your heart to open to their message."
	default:
		dialogue = "I feel your energy shifting as you process this wisdom."
	}

	if next == StateFinalSynthesis {
		return &TurnResult{
			Dialogue:  dialogue + " Now let me weave all three cards together to reveal the complete message...",
			NextState: next,
			Options:   []Choice{choice("continue", "Continue")},
		}, nil
	}

	q := QuestionFor(sess.Cards[index])
	return &TurnResult{
		Dialogue:            dialogue + " " + q.Question,
		NextState:           next,
		InteractiveQuestion: &q,
		Options:             q.Options,
	}, nil
}

func (o *Orchestrator) handleInteractiveQuestion(t *turn, index int) (*TurnResult, error) {
	sess := t.session
	card := sess.Cards[index]
	next := routes[sess.State].next

	rec := learning.InteractiveRecord{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		CardIndex: index,
		Card:      card.Name,
		Question:  QuestionFor(card).Question,
		Answer:    t.input,
	}
	t.after(func(ctx context.Context) { o.learner.LogInteractiveResponse(ctx, rec) })

	dialogue := ResponseTo(t.input)
	switch next {
	case StateRevealingCard2:
		dialogue += " Now, let us see what your second card reveals..."
	case StateRevealingCard3:
		dialogue += " The final card awaits to complete the tapestry of wisdom..."
	default:
		dialogue += " Now let me weave all three cards together to reveal the complete message..."
	}

	return &TurnResult{
		Dialogue:  dialogue,
		NextState: next,
		Options:   []Choice{choice("continue", "Continue")},
	}, nil
}

func (o *Orchestrator) handleFinalSynthesis(ctx context.Context, t *turn) (*TurnResult, error) {
	sess := t.session

	reading := o.compose(sess.Cards, sess.SpreadType, sess.Interpretations, sess.Context)
	sess.FinalReading = reading

	result := &TurnResult{
		Dialogue: "As our sacred conversation draws to a close, I offer you this synthesis of all that has emerged:\n\n" +
			reading.OverallGuidance + "\n\n" + reading.SpiritualInsight,
		NextState:    routes[sess.State].next,
		FinalReading: reading,
		Options: []Choice{
			choice("save_reading", "Save this reading"),
			choice("reflect", "I need time to reflect"),
			choice("new_reading", "Start a new reading"),
		},
	}

	userID := sess.UserID
	t.after(func(ctx context.Context) {
		metrics.ReadingsCompletedTotal.Inc()
		if userID == "" {
			return
		}
		o.learner.LogInteraction(ctx, userID, reading, nil)
		level := o.learner.CheckAndIncrementLevel(ctx, userID)
		result.Level = &level
	})
	return result, nil
}

func (o *Orchestrator) compose(cards []tarot.Card, spread tarot.SpreadType, interpretations []*tarot.Interpretation, rc tarot.ReadingContext) *tarot.Reading {
	return &tarot.Reading{
		ID:                  uuid.New().String(),
		Narrative:           Narrative(cards, spread),
		CardInterpretations: collect(interpretations),
		OverallGuidance:     OverallGuidance(interpretations),
		SpiritualInsight:    SpiritualInsight(cards),
		ReaderSignature:     o.phrases.Signature(),
		Context:             rc,
		CreatedAt:           o.now(),
	}
}

func (o *Orchestrator) logTurn(ctx context.Context, sess *Session, req TurnRequest, result *TurnResult) {
	if sess.UserID == "" {
		return
	}
	rec := learning.TurnRecord{
		UserID:            sess.UserID,
		SessionID:         sess.ID,
		ConversationState: string(req.State),
		TurnNumber:        sess.Turns,
		Dialogue:          result.Dialogue,
		UserResponse:      req.UserInput,
	}
	if rc := result.RevealedCard; rc != nil {
		rec.RevealedCard = &memory.RevealedCard{Card: rc.Card.Name}
		if rc.Interpretation != nil {
			rec.RevealedCard.Interpretation = rc.Interpretation.BaseInterpretation
		}
	}
	o.learner.LogConversationTurn(ctx, rec)
}

// Session returns a copy of the session's current state.
func (o *Orchestrator) Session(id string) (*Session, error) {
	sess, ok := o.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetReading produces a complete reading for any spread in one call.
func (o *Orchestrator) GetReading(ctx context.Context, cards []tarot.Card, rc tarot.ReadingContext) (*tarot.Reading, error) {
	if !rc.SpreadType.Valid() {
		return nil, fmt.Errorf("%w: unknown spread %q", ErrInvalidSessionInit, rc.SpreadType)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no cards drawn", ErrInvalidSessionInit)
	}
	for i := range cards {
		if err := o.validator.validate.Struct(cards[i]); err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", ErrInvalidSessionInit, i+1, err)
		}
	}
	rc.Cards = cards

	memories := o.learner.RetrieveUserMemories(ctx, rc.UserID)
	interpretations := make([]*tarot.Interpretation, len(cards))
	for i, card := range cards {
		in := o.interpret(ctx, card, tarot.PositionName(rc.SpreadType, i), rc, i, memories)
		interpretations[i] = &in
	}

	reading := o.compose(cards, rc.SpreadType, interpretations, rc)
	metrics.ReadingsCompletedTotal.Inc()
	if rc.UserID != "" {
		o.learner.LogInteraction(ctx, rc.UserID, reading, nil)
	}
	return reading, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrMissingUserInput):
		return "missing_user_input"
	case errors.Is(err, ErrInvalidSessionInit):
		return "invalid_session_init"
	case errors.Is(err, ErrUnknownState):
		return "unknown_state"
	case errors.Is(err, ErrSessionComplete):
		return "session_complete"
	case errors.Is(err, ErrStateMismatch):
		return "state_mismatch"
	}
	return "internal"
}
