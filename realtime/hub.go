// Package realtime is the room-keyed push channel. Each websocket
// connection belongs to at most one room, named by the caller's user id,
// and Publish fans a frame out to every connection currently in a room.
// Nothing is queued for rooms with no connections.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"marketplace/events"
)

// Hub is the registry of rooms. It is created once by the server and shared
// by every handler.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Join moves c into room, leaving any room it was in before
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.room = room
}

// Leave removes c from its room, if any
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// Publish encodes the event once and queues it on every connection in the
// room. Frames queued by one caller keep their order per connection.
func (h *Hub) Publish(_ context.Context, room, event string, payload any) error {
	frame, err := json.Marshal(events.Envelope{Event: event, Data: payload})
	if err != nil {
		return errors.Wrapf(err, "encoding %s", event)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if !c.enqueue(frame) {
			log.WithFields(log.Fields{"room": room, "event": event, "user": c.userID}).
				Warn("client send buffer full, dropping event")
		}
	}
	return nil
}

// RoomSize reports how many connections are joined to room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// disconnect removes c from the registry and closes its send queue. After
// it returns no Publish can reach c.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
	c.closeSend()
}
