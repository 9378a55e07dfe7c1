// Package analytics records user activity events and summarizes them for
// the admin dashboard.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a tracked user action.
type EventType string

const (
	EventPageView    EventType = "page_view"
	EventProductView EventType = "product_view"
	EventDiagnosis   EventType = "diagnosis"
	EventArticleView EventType = "article_view"
	EventSearch      EventType = "search"
	EventCartAdd     EventType = "cart_add"
	EventCheckout    EventType = "checkout"
)

// ErrInvalidEvent is returned when an event fails validation.
var ErrInvalidEvent = errors.New("analytics: invalid event")

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventPageView, EventProductView, EventDiagnosis, EventArticleView, EventSearch, EventCartAdd, EventCheckout:
		return true
	}
	return false
}

// Event is one append-only usage record.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	EventType EventType      `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Recorder appends usage events.
type Recorder interface {
	Append(ctx context.Context, event Event) error
}

// prepare validates the event and fills id, payload and timestamp defaults.
func prepare(event Event) (Event, error) {
	if !event.EventType.Valid() {
		return event, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, event.EventType)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event, nil
}

// MultiRecorder fans an event out to several recorders. Every recorder is
// attempted; failures are joined.
type MultiRecorder []Recorder

// Append implements Recorder.
func (m MultiRecorder) Append(ctx context.Context, event Event) error {
	event, err := prepare(event)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
