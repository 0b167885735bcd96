package learning

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(e *Engine) http.Handler {
	r := chi.NewRouter()
	NewHandler(e).Routes(r)
	return r
}

func TestHandler_TurnValidation(t *testing.T) {
	router := newTestRouter(newTestEngine(&recordingClient{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/learning/turn", strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/learning/turn", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_TurnRecorded(t *testing.T) {
	client := &recordingClient{}
	router := newTestRouter(newTestEngine(client, nil))

	body := `{"user_id":"u1","session_id":"s1","conversation_state":"AWAITING_DRAW","turn_number":1,"dialogue":"Welcome"}`
	req := httptest.NewRequest(http.MethodPost, "/learning/turn", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, client.written(), 1)
}

func TestHandler_QuestionTypeMustBeKnown(t *testing.T) {
	router := newTestRouter(newTestEngine(&recordingClient{}, nil))

	body := `{"user_id":"u1","session_id":"s1","question":"q","response":"r","question_type":"gossip"}`
	req := httptest.NewRequest(http.MethodPost, "/learning/question", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_InteractionRejectsBadRating(t *testing.T) {
	router := newTestRouter(newTestEngine(&recordingClient{}, nil))

	body := `{"user_id":"u1","reading":{"id":"r1","session_context":{"session_id":"s1","spread_type":"single"}},"feedback":{"rating":9}}`
	req := httptest.NewRequest(http.MethodPost, "/learning/interaction", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LevelAndRecommendations(t *testing.T) {
	e := newTestEngine(&recordingClient{journey: history(t, 3, 10, 2)}, nil)
	router := newTestRouter(e)

	req := httptest.NewRequest(http.MethodPost, "/users/user-1/level", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data LevelResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Data.LevelIncreased)
	assert.Equal(t, 2, resp.Data.NewLevel)

	req = httptest.NewRequest(http.MethodGet, "/users/user-1/recommendations", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recommended_spreads":["three-card"]`)

	req = httptest.NewRequest(http.MethodGet, "/users/user-1/profile", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
