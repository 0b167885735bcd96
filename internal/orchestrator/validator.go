package orchestrator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingUserInput   = errors.New("user input required for this state")
	ErrInvalidSessionInit = errors.New("cards and context required for new session")
	ErrUnknownState       = errors.New("unknown conversation state")
	ErrSessionComplete    = errors.New("reading already complete")
	ErrStateMismatch      = errors.New("state does not match session")
)

// Validator checks that a turn may be applied to a session.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks req against sess, which is nil when no session exists yet.
func (v *Validator) Validate(req TurnRequest, sess *Session) error {
	if !req.State.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownState, req.State)
	}

	if sess == nil {
		if req.State != StateAwaitingDraw {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, req.SessionID)
		}
		return v.validateInit(req)
	}

	if sess.State.Terminal() {
		return ErrSessionComplete
	}
	if sess.State != req.State {
		return fmt.Errorf("%w: session is in %s, turn was for %s", ErrStateMismatch, sess.State, req.State)
	}
	if requiresInput(req.State) && req.UserInput == "" {
		return ErrMissingUserInput
	}
	return nil
}

func (v *Validator) validateInit(req TurnRequest) error {
	if len(req.Cards) == 0 || req.Context == nil {
		return ErrInvalidSessionInit
	}
	if len(req.Cards) != ConversationCards {
		return fmt.Errorf("%w: a conversation needs %d cards, got %d", ErrInvalidSessionInit, ConversationCards, len(req.Cards))
	}
	if n := req.Context.SpreadType.CardCount(); n != ConversationCards {
		return fmt.Errorf("%w: spread %q does not lay out %d cards", ErrInvalidSessionInit, req.Context.SpreadType, ConversationCards)
	}
	for i := range req.Cards {
		if err := v.validate.Struct(req.Cards[i]); err != nil {
			return fmt.Errorf("%w: card %d: %v", ErrInvalidSessionInit, i+1, err)
		}
	}
	return nil
}
