// Package memory talks to the journey memory service that stores a user's
// interaction history as portable notes.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mystic-arcana/oracle/internal/config"
	"github.com/mystic-arcana/oracle/internal/metrics"
)

// Client writes and reads notes. Journey returns notes oldest first.
type Client interface {
	Record(ctx context.Context, note Note) error
	Journey(ctx context.Context, userID string) ([]Note, error)
}

// RecordRequest is the body of POST /record.
type RecordRequest struct {
	UserID          string          `json:"userId" validate:"required"`
	EntryType       string          `json:"entryType" validate:"required"`
	Data            json.RawMessage `json:"data"`
	SynthesisPrompt string          `json:"synthesisPrompt,omitempty"`
}

// JourneyEntry is one stored record as returned by GET /journey/{userId}.
type JourneyEntry struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	EntryType       string          `json:"entry_type"`
	Data            json.RawMessage `json:"data"`
	SynthesisPrompt string          `json:"synthesis_prompt,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// JourneyResponse is the body of GET /journey/{userId}.
type JourneyResponse struct {
	Journey []JourneyEntry `json:"journey"`
}

// ToNote maps a stored entry back into a Note.
func (e JourneyEntry) ToNote() Note {
	return Note{
		ID:        e.ID,
		UserID:    e.UserID,
		Content:   string(e.Data),
		Context:   e.SynthesisPrompt,
		Category:  e.EntryType,
		Timestamp: e.CreatedAt,
	}
}

// NewRecordRequest maps a note into the memory service's record body.
func NewRecordRequest(note Note) (RecordRequest, error) {
	if !json.Valid([]byte(note.Content)) {
		return RecordRequest{}, fmt.Errorf("note content is not valid json")
	}
	entryType := note.Category
	if entryType == "" {
		entryType = CategoryGeneral
	}
	return RecordRequest{
		UserID:          note.UserID,
		EntryType:       entryType,
		Data:            json.RawMessage(note.Content),
		SynthesisPrompt: note.Context,
	}, nil
}

// HTTPClient is a Client backed by the journey service HTTP API.
type HTTPClient struct {
	baseURL      string
	client       *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	limiter      *rate.Limiter
}

// NewHTTPClient creates a client for the memory service at cfg.URL.
func NewHTTPClient(cfg config.MemoryConfig) *HTTPClient {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	c := &HTTPClient{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		client:       &http.Client{},
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
	if cfg.WriteRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.WriteRate), max(cfg.WriteBurst, 1))
	}
	return c
}

// Record stores a note. Any status other than 200 or 201 is an error. Writes beyond
// the configured rate wait for a slot within the write timeout.
func (c *HTTPClient) Record(ctx context.Context, note Note) error {
	req, err := NewRecordRequest(note)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling record request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.MemoryOperationsTotal.WithLabelValues("write", "throttled").Inc()
			return fmt.Errorf("waiting for write slot: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/record", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating record request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.MemoryOperationsTotal.WithLabelValues("write", "error").Inc()
		return fmt.Errorf("recording note: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.MemoryOperationsTotal.WithLabelValues("write", "error").Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("memory service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	metrics.MemoryOperationsTotal.WithLabelValues("write", "ok").Inc()
	return nil
}

// Journey fetches every note of a user. An unknown user (404) yields an empty list.
func (c *HTTPClient) Journey(ctx context.Context, userID string) ([]Note, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/journey/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("creating journey request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.MemoryOperationsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("fetching journey: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.MemoryOperationsTotal.WithLabelValues("read", "ok").Inc()
		return []Note{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.MemoryOperationsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("memory service returned %d", resp.StatusCode)
	}

	var jr JourneyResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		metrics.MemoryOperationsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("decoding journey: %w", err)
	}

	notes := make([]Note, 0, len(jr.Journey))
	for _, e := range jr.Journey {
		n := e.ToNote()
		if n.UserID == "" {
			n.UserID = userID
		}
		notes = append(notes, n)
	}
	metrics.MemoryOperationsTotal.WithLabelValues("read", "ok").Inc()
	return notes, nil
}

// Retrieve returns a user's notes, or an empty list when the memory service fails.
func Retrieve(ctx context.Context, c Client, userID string) []Note {
	if userID == "" {
		return []Note{}
	}
	notes, err := c.Journey(ctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("memory: journey read timed out", "user_id", userID)
		} else {
			slog.Warn("memory: journey read failed", "user_id", userID, "error", err)
		}
		return []Note{}
	}
	return notes
}
