package orchestrator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mystic-arcana/oracle/internal/api"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

// TurnBody is the body of POST /readings/{sessionID}/turns.
type TurnBody struct {
	State     State                 `json:"current_state" validate:"required"`
	UserInput string                `json:"user_input,omitempty"`
	Cards     []tarot.Card          `json:"cards,omitempty" validate:"omitempty,dive"`
	Context   *tarot.ReadingContext `json:"context,omitempty"`
}

// ReadingBody is the body of POST /readings.
type ReadingBody struct {
	Cards   []tarot.Card         `json:"cards" validate:"required,min=1,dive"`
	Context tarot.ReadingContext `json:"context"`
}

type Handler struct {
	orchestrator *Orchestrator
	validate     *validator.Validate
	turnLimiter  func(http.Handler) http.Handler
}

func NewHandler(o *Orchestrator) *Handler {
	return &Handler{
		orchestrator: o,
		validate:     validator.New(),
	}
}

// WithTurnLimiter guards the turn endpoint with mw.
func (h *Handler) WithTurnLimiter(mw func(http.Handler) http.Handler) *Handler {
	h.turnLimiter = mw
	return h
}

// Routes mounts the reading endpoints under /readings.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/readings", func(r chi.Router) {
		r.Post("/", h.Reading)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.Session)
			r.Delete("/", h.Discard)
			if h.turnLimiter != nil {
				r.With(h.turnLimiter).Post("/turns", h.Turn)
			} else {
				r.Post("/turns", h.Turn)
			}
		})
	})
}

func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var body TurnBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.orchestrator.ProcessTurn(r.Context(), TurnRequest{
		SessionID: chi.URLParam(r, "sessionID"),
		State:     body.State,
		UserInput: body.UserInput,
		Cards:     body.Cards,
		Context:   body.Context,
	})
	if err != nil {
		slog.Debug("reading turn rejected", "session_id", chi.URLParam(r, "sessionID"), "state", body.State, "error", err)
		api.HandleError(w, toAppError(err))
		return
	}
	api.JSON(w, http.StatusOK, result)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.orchestrator.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		api.HandleError(w, toAppError(err))
		return
	}
	api.JSON(w, http.StatusOK, sess)
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Sessions().Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reading(w http.ResponseWriter, r *http.Request) {
	var body ReadingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	reading, err := h.orchestrator.GetReading(r.Context(), body.Cards, body.Context)
	if err != nil {
		api.HandleError(w, toAppError(err))
		return
	}
	api.JSON(w, http.StatusCreated, reading)
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return api.NewNotFoundError(err.Error())
	case errors.Is(err, ErrSessionComplete), errors.Is(err, ErrStateMismatch):
		return api.NewConflictError(err.Error())
	case errors.Is(err, ErrMissingUserInput), errors.Is(err, ErrInvalidSessionInit), errors.Is(err, ErrUnknownState):
		return api.NewValidationError(err.Error())
	}
	slog.Error("processing reading", "error", err)
	return api.ErrInternalServer
}
