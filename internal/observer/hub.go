// Package observer streams world lifecycle events (deaths, drops,
// respawns, removals) to websocket clients.
package observer

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/rsckernel/internal/model"
)

// DefaultSessionBuffer is how many encoded events a slow client may lag behind
// before events are dropped for it.
const DefaultSessionBuffer = 256

type session struct {
	id    uint64
	kinds []model.WorldEventKind // empty = all
	out   chan []byte
}

func (s *session) wants(kind model.WorldEventKind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, kind)
}

// Hub fans world events out to subscribed sessions. Implements
// model.EventPublisher; Publish never blocks the caller.
type Hub struct {
	buffer int

	mu       sync.RWMutex
	sessions map[uint64]*session
	nextID   atomic.Uint64

	published atomic.Int64
	dropped   atomic.Int64
}

// NewHub creates a hub. bufferSize below 1 means DefaultSessionBuffer.
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultSessionBuffer
	}
	return &Hub{
		buffer:   bufferSize,
		sessions: make(map[uint64]*session),
	}
}

// Publish implements model.EventPublisher.
func (h *Hub) Publish(ev model.WorldEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.sessions) == 0 {
		return
	}

	b, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encoding world event", "kind", ev.Kind, "error", err)
		return
	}
	h.published.Add(1)

	for _, s := range h.sessions {
		if !s.wants(ev.Kind) {
			continue
		}
		select {
		case s.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) subscribe(kinds []model.WorldEventKind) *session {
	s := &session{
		id:    h.nextID.Add(1),
		kinds: kinds,
		out:   make(chan []byte, h.buffer),
	}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	return s
}

// unsubscribe removes the session and closes its channel. Publish holds the
// read lock while sending, so no send can hit the closed channel.
func (h *Hub) unsubscribe(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.id]; !ok {
		return
	}
	delete(h.sessions, s.id)
	close(s.out)
}

// Sessions returns the number of connected observers.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stats returns how many events were encoded and how many were dropped for
// lagging sessions.
func (h *Hub) Stats() (published, dropped int64) {
	return h.published.Load(), h.dropped.Load()
}
