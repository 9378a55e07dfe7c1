package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRecorder stores events in the user_events table.
type PostgresRecorder struct {
	db pgxQuerier
}

var _ Recorder = (*PostgresRecorder)(nil)

// NewPostgresRecorder builds a recorder on a pgx pool.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	if pool == nil {
		panic("analytics: pgx pool required")
	}
	return newPostgresRecorder(pool)
}

func newPostgresRecorder(db pgxQuerier) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Append inserts one event.
func (r *PostgresRecorder) Append(ctx context.Context, event Event) error {
	event, err := prepare(event)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("analytics: marshal payload: %w", err)
	}
	query := `
		INSERT INTO user_events (id, user_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var userID *string
	if event.UserID != "" {
		userID = &event.UserID
	}
	if _, err := r.db.Exec(ctx, query, event.ID, userID, string(event.EventType), payload, event.Timestamp); err != nil {
		return fmt.Errorf("analytics: insert event: %w", err)
	}
	return nil
}

// TypeCount is the number of events of one type.
type TypeCount struct {
	EventType EventType `json:"eventType"`
	Count     int64     `json:"count"`
}

// Window bounds a summary query. Zero values are open ends.
type Window struct {
	From time.Time
	To   time.Time
}

// CountByType groups events by type, most frequent first.
func (r *PostgresRecorder) CountByType(ctx context.Context, w Window) ([]TypeCount, error) {
	where, args := w.clause()
	query := `
		SELECT event_type, COUNT(*)
		FROM user_events` + where + `
		GROUP BY event_type
		ORDER BY COUNT(*) DESC, event_type
	`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: count by type: %w", err)
	}
	defer rows.Close()

	out := []TypeCount{}
	for rows.Next() {
		var (
			eventType string
			count     int64
		)
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("analytics: scan count: %w", err)
		}
		out = append(out, TypeCount{EventType: EventType(eventType), Count: count})
	}
	return out, rows.Err()
}

// Recent returns the latest events of one type, newest first.
func (r *PostgresRecorder) Recent(ctx context.Context, eventType EventType, limit int) ([]Event, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, eventType)
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id, COALESCE(user_id, ''), event_type, payload, occurred_at
		FROM user_events
		WHERE event_type = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, string(eventType), limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: recent events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			ev      Event
			typ     string
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &typ, &payload, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("analytics: scan event: %w", err)
		}
		ev.EventType = EventType(typ)
		ev.Payload = map[string]any{}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, fmt.Errorf("analytics: decode payload: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (w Window) clause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !w.From.IsZero() {
		args = append(args, w.From)
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !w.To.IsZero() {
		args = append(args, w.To)
		conds = append(conds, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}
