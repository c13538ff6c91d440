// Package events carries outbound domain events to external sinks.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	CheckIn        = "FO_CHECKIN"
	LookaheadBuilt = "LOOKAHEAD_BUILT"
	TimelineStored = "GANTT_RENDERED"
)

// Event is one occurrence published to sinks.
type Event struct {
	ID      string         `json:"id"`
	Name    string         `json:"event"`
	At      time.Time      `json:"timestamp"`
	Payload map[string]any `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(name string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{ID: uuid.NewString(), Name: name, At: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events to one sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout publishes to every sink in turn. Sink failures are logged and never
// reach the caller.
type Fanout struct {
	sinks []Publisher
}

// NewFanout skips nil sinks.
func NewFanout(sinks ...Publisher) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Len reports the number of sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Publish always returns nil.
func (f *Fanout) Publish(ctx context.Context, e Event) error {
	for _, s := range f.sinks {
		if err := s.Publish(ctx, e); err != nil {
			slog.Warn("Event delivery failed", "event", e.Name, "id", e.ID, "error", err)
		}
	}
	return nil
}
