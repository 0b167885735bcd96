// Package journey is the memory service: it stores the journey entries a
// user accumulates across readings and serves them back in order.
package journey

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mystic-arcana/oracle/internal/memory"
)

// Repository stores journey entries. ListByUser returns at most the newest
// entries the repository keeps, oldest first.
type Repository interface {
	Append(ctx context.Context, entry *memory.JourneyEntry) error
	ListByUser(ctx context.Context, userID string) ([]memory.JourneyEntry, error)
}

type postgresRepository struct {
	pool       *pgxpool.Pool
	maxEntries int
}

func NewPostgresRepository(pool *pgxpool.Pool, maxEntries int) Repository {
	return &postgresRepository{pool: pool, maxEntries: maxEntries}
}

func (r *postgresRepository) Append(ctx context.Context, entry *memory.JourneyEntry) error {
	query := `
		INSERT INTO journey_entries (id, user_id, entry_type, data, synthesis_prompt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.EntryType,
		[]byte(entry.Data), entry.SynthesisPrompt, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting journey entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID string) ([]memory.JourneyEntry, error) {
	query := `
		SELECT id, user_id, entry_type, data, synthesis_prompt, created_at
		FROM (
			SELECT id, user_id, entry_type, data, synthesis_prompt, created_at
			FROM journey_entries
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, userID, r.maxEntries)
	if err != nil {
		return nil, fmt.Errorf("listing journey entries: %w", err)
	}
	defer rows.Close()

	entries := []memory.JourneyEntry{}
	for rows.Next() {
		var (
			e    memory.JourneyEntry
			data []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &data, &e.SynthesisPrompt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning journey entry: %w", err)
		}
		e.Data = data
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journey entries: %w", err)
	}
	return entries, nil
}
