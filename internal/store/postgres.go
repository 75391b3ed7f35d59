package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

const insertEventSQL = `
	INSERT INTO delivery_events(
		tenant_id, event_id, ts, duration, translation_id,
		source_language, target_language, client_name, event_name, nr_words)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (tenant_id, event_id) DO NOTHING
	RETURNING 1
`

// PostgresStore is the durable persistence layer for delivery events.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ EventStore = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertEvent persists an event and returns inserted=false when it is a duplicate.
//
// Duplicate detection is enforced by the database constraint on (tenant_id, event_id),
// which is compatible with retries and at-least-once delivery.
func (p *PostgresStore) InsertEvent(ctx context.Context, tenantID, eventID string, e models.Event) (bool, error) {
	if tenantID == "" || eventID == "" {
		return false, errors.New("tenantID/eventID required")
	}

	var one int
	err := p.pool.QueryRow(ctx, insertEventSQL, insertArgs(tenantID, eventID, e)...).Scan(&one)
	if err == nil {
		return true, nil
	}
	// A conflict returns no row because RETURNING has nothing to return.
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// InsertEvents queues every record in a single batch.
func (p *PostgresStore) InsertEvents(ctx context.Context, tenantID string, records []Record) (int, error) {
	if tenantID == "" {
		return 0, errors.New("tenantID required")
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		if r.EventID == "" {
			return 0, errors.New("eventID required")
		}
		batch.Queue(insertEventSQL, insertArgs(tenantID, r.EventID, r.Event)...)
	}

	results := p.pool.SendBatch(ctx, batch)

	inserted := 0
	for i := range records {
		var one int
		err := results.QueryRow().Scan(&one)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, pgx.ErrNoRows):
		default:
			_ = results.Close()
			return inserted, fmt.Errorf("insert event %q: %w", records[i].EventID, err)
		}
	}
	return inserted, results.Close()
}

// ListEvents returns events for tenantID in the half-open window [from,to).
func (p *PostgresStore) ListEvents(ctx context.Context, tenantID string, from, to time.Time) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT ts, duration, translation_id, source_language, target_language,
		       client_name, event_name, nr_words
		FROM delivery_events
		WHERE tenant_id=$1
		  AND ts >= $2
		  AND ts <  $3
		ORDER BY ts, id
	`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e  models.Event
			ts time.Time
		)
		if err := rows.Scan(&ts, &e.Duration, &e.TranslationID, &e.SourceLanguage,
			&e.TargetLanguage, &e.ClientName, &e.EventName, &e.NrWords); err != nil {
			return nil, err
		}
		e.Timestamp = models.NewTimestamp(ts.UTC())
		events = append(events, e)
	}
	return events, rows.Err()
}

func insertArgs(tenantID, eventID string, e models.Event) []any {
	return []any{
		tenantID, eventID, e.Timestamp.Time, e.Duration, e.TranslationID,
		e.SourceLanguage, e.TargetLanguage, e.ClientName, e.EventName, e.NrWords,
	}
}
