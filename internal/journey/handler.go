package journey

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mystic-arcana/oracle/internal/api"
	"github.com/mystic-arcana/oracle/internal/memory"
)

const DefaultServerName = "journey"

// RecordResponse is the body of a successful POST /record.
type RecordResponse struct {
	Message string               `json:"message"`
	Entry   *memory.JourneyEntry `json:"entry"`
}

type Handler struct {
	service    *Service
	serverName string
	now        func() time.Time
}

func NewHandler(service *Service, serverName string) *Handler {
	if serverName == "" {
		serverName = DefaultServerName
	}
	return &Handler{
		service:    service,
		serverName: serverName,
		now:        time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.Status)
	r.Get("/health", h.Health)
	r.Post("/record", h.Record)
	r.Get("/journey/{userId}", h.Journey)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"serverName": h.serverName,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "healthy",
		"serverName": h.serverName,
		"timestamp":  h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req memory.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.JSONErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	entry, err := h.service.Record(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			api.JSONErrorMessage(w, http.StatusBadRequest, "userId and entryType are required.")
			return
		}
		slog.Error("recording journey entry", "user_id", req.UserID, "error", err)
		api.JSONErrorMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	api.WriteJSON(w, http.StatusCreated, RecordResponse{
		Message: "Journey entry recorded successfully.",
		Entry:   entry,
	})
}

func (h *Handler) Journey(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	entries, err := h.service.Journey(r.Context(), userID)
	if err != nil {
		slog.Error("retrieving journey", "user_id", userID, "error", err)
		api.JSONErrorMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	api.WriteJSON(w, http.StatusOK, memory.JourneyResponse{Journey: entries})
}
