// Package events defines the integration events emitted by bounded contexts.
package events

import (
	"context"
	"sync"
	"time"
)

// Event is an integration message published after a state change commits.
type Event struct {
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New stamps an event with the current UTC time.
func New(name, key string, payload any) Event {
	return Event{Name: name, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events to downstream consumers. Delivery is best effort:
// callers log failures instead of failing the use case that produced them.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher discards events.
var NoopPublisher Publisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...Event) error { return nil }

// Recorder keeps published events in memory; tests use it to assert emissions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Names lists recorded event names in publish order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}
