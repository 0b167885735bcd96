package learning

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mystic-arcana/oracle/internal/api"
	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

// InteractionRequest reports a completed reading and optional feedback.
type InteractionRequest struct {
	UserID   string           `json:"user_id" validate:"required"`
	Reading  tarot.Reading    `json:"reading"`
	Feedback *memory.Feedback `json:"feedback,omitempty"`
}

type Handler struct {
	engine   *Engine
	validate *validator.Validate
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{
		engine:   engine,
		validate: validator.New(),
	}
}

// Routes mounts the learning endpoints under /learning and /users.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/learning", func(r chi.Router) {
		r.Post("/interaction", h.Interaction)
		r.Post("/turn", h.Turn)
		r.Post("/response", h.Response)
		r.Post("/card-reveal", h.CardReveal)
		r.Post("/question", h.Question)
		r.Get("/stats", h.Stats)
	})
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/recommendations", h.Recommendations)
		r.Get("/profile", h.Profile)
		r.Get("/patterns", h.Patterns)
		r.Get("/engagement", h.Engagement)
		r.Post("/level", h.CheckLevel)
	})
}

func (h *Handler) Interaction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.LogInteraction(r.Context(), req.UserID, &req.Reading, req.Feedback)
	api.JSONMessage(w, http.StatusAccepted, "interaction recorded")
}

func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRecord
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.LogConversationTurn(r.Context(), req)
	api.JSONMessage(w, http.StatusAccepted, "turn recorded")
}

func (h *Handler) Response(w http.ResponseWriter, r *http.Request) {
	var req ResponseRecord
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.LogUserResponse(r.Context(), req)
	api.JSONMessage(w, http.StatusAccepted, "response recorded")
}

func (h *Handler) CardReveal(w http.ResponseWriter, r *http.Request) {
	var req CardRevealRecord
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.LogCardReveal(r.Context(), req)
	api.JSONMessage(w, http.StatusAccepted, "card reveal recorded")
}

func (h *Handler) Question(w http.ResponseWriter, r *http.Request) {
	var req QuestionRecord
	if !h.decode(w, r, &req) {
		return
	}
	h.engine.LogQuestionResponse(r.Context(), req)
	api.JSONMessage(w, http.StatusAccepted, "question response recorded")
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.engine.Stats())
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.engine.GetPersonalizationRecommendations(chi.URLParam(r, "userID")))
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.engine.Profile(chi.URLParam(r, "userID"))
	if !ok {
		api.HandleError(w, api.NewNotFoundError("profile not found"))
		return
	}
	api.JSON(w, http.StatusOK, p)
}

func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.engine.Patterns(chi.URLParam(r, "userID")))
}

func (h *Handler) Engagement(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.engine.EngagementAnalysis(r.Context(), chi.URLParam(r, "userID")))
}

func (h *Handler) CheckLevel(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.engine.CheckAndIncrementLevel(r.Context(), chi.URLParam(r, "userID")))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return false
	}
	return true
}
