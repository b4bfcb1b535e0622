// Package events defines the room-scoped event contract between the order
// lifecycle and whatever delivers events to clients.
package events

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Event names pushed to rooms
const (
	NewOrder    = "newOrder"
	OrderUpdate = "orderUpdate"
	OrderDelete = "orderDelete"
)

// JoinRoom is the only event a client sends
const JoinRoom = "joinRoom"

// Envelope is the wire frame in both directions
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher delivers a named event to every subscriber of a room.
// Delivery is best-effort: an error means this sink failed, not that the
// mutation behind the event should be undone.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// Fanout publishes to every sink in order and logs sinks that fail, so one
// broken sink never starves the others.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, room, event string, payload any) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, room, event, payload); err != nil {
			log.WithError(err).WithFields(log.Fields{"room": room, "event": event}).Warn("event sink failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(context.Context, string, string, any) error { return nil }
