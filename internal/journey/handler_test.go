package journey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/config"
	"github.com/mystic-arcana/oracle/internal/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(NewService(NewInMemoryRepository(100)), "").Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Record(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/record", "application/json",
		strings.NewReader(`{"userId":"user-1","entryType":"tarot_reading","data":{"card":"The Star"}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body RecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Journey entry recorded successfully.", body.Message)
	require.NotNil(t, body.Entry)
	assert.Equal(t, "user-1", body.Entry.UserID)
	assert.JSONEq(t, `{"card":"The Star"}`, string(body.Entry.Data))
}

func TestHandler_RecordRejected(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing user", `{"entryType":"general"}`, "userId and entryType are required."},
		{"missing type", `{"userId":"user-1"}`, "userId and entryType are required."},
		{"malformed", `{"userId":`, "Invalid JSON body."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/record", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestHandler_EmptyJourney(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/journey/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.JSONEq(t, `[]`, string(body["journey"]))
}

func TestHandler_HealthAndStatus(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, map[string]string{"status": "ok", "serverName": DefaultServerName}, status)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	_, err = time.Parse(time.RFC3339Nano, health["timestamp"])
	assert.NoError(t, err)
}

func TestHandler_ServesMemoryClient(t *testing.T) {
	srv := newTestServer(t)
	client := memory.NewHTTPClient(config.MemoryConfig{URL: srv.URL})
	ctx := context.Background()

	require.NoError(t, client.Record(ctx, memory.Note{
		UserID:   "user-1",
		Content:  `{"reading_summary":{"spread_type":"three-card"}}`,
		Context:  "first reading",
		Category: memory.CategoryReading,
	}))
	require.NoError(t, client.Record(ctx, memory.Note{
		UserID:  "user-1",
		Content: `{"interaction_data":{"type":"conversation_turn"}}`,
	}))

	notes, err := client.Journey(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, memory.CategoryReading, notes[0].Category)
	assert.Equal(t, "first reading", notes[0].Context)
	assert.JSONEq(t, `{"reading_summary":{"spread_type":"three-card"}}`, notes[0].Content)
	assert.Equal(t, memory.CategoryGeneral, notes[1].Category)
	assert.False(t, notes[1].Timestamp.Before(notes[0].Timestamp))
}
