package analytics

import (
	"context"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// LogRecorder writes events to the structured log. Used when no durable
// sink is configured.
type LogRecorder struct {
	logger *logging.Logger
}

// NewLogRecorder creates a log-backed recorder.
func NewLogRecorder(logger *logging.Logger) *LogRecorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogRecorder{logger: logger}
}

// Append implements Recorder.
func (r *LogRecorder) Append(_ context.Context, event Event) error {
	event, err := prepare(event)
	if err != nil {
		return err
	}
	r.logger.Info("usage event",
		"event_id", event.ID,
		"event_type", event.EventType,
		"user_id", event.UserID,
		"payload_keys", len(event.Payload),
	)
	return nil
}
