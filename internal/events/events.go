// Package events announces entity changes after successful mutations.
package events

import (
	"context"
	"fmt"
	"time"
)

// Action is what happened to an entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is the message body, serialized as JSON.
type Event struct {
	Entity string    `json:"entity"`
	Action Action    `json:"action"`
	ID     int       `json:"id"`
	At     time.Time `json:"at"`
}

// New stamps an event with the current UTC time.
func New(entity string, action Action, id int) Event {
	return Event{Entity: entity, Action: action, ID: id, At: time.Now().UTC()}
}

// RoutingKey is "<entity>.<action>".
func (e Event) RoutingKey() string {
	return fmt.Sprintf("%s.%s", e.Entity, e.Action)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
