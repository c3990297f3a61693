package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"ticketdesk/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Subscriber is one live connection as seen by the hub.
type Subscriber interface {
	ID() string
	// Send enqueues msg without blocking and reports whether it was accepted.
	Send(msg []byte) bool
}

type closer interface {
	Close() error
}

// Hub tracks which connections watch which ticket. Membership is
// process-local and lives only as long as the connection.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Subscriber
	rooms map[int64]map[string]Subscriber
	// joined is the reverse index used by Disconnect
	joined map[string]map[int64]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Subscriber),
		rooms:  make(map[int64]map[string]Subscriber),
		joined: make(map[string]map[int64]struct{}),
	}
}

// Attach records a live connection so Close can reach it. Connections that
// only join rooms do not need it.
func (h *Hub) Attach(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[s.ID()]; !ok {
		h.conns[s.ID()] = s
		metrics.WsConnections.Inc()
	}
}

// Join adds s to the ticket's room. Joining twice is a no-op.
func (h *Hub) Join(ticketID int64, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[ticketID]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[ticketID] = room
	}
	room[s.ID()] = s

	tickets, ok := h.joined[s.ID()]
	if !ok {
		tickets = make(map[int64]struct{})
		h.joined[s.ID()] = tickets
	}
	tickets[ticketID] = struct{}{}
}

// Leave removes s from the ticket's room. Leaving a room never joined is a no-op.
func (h *Hub) Leave(ticketID int64, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(ticketID, s.ID())
}

// Disconnect removes s from every room it joined.
func (h *Hub) Disconnect(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ticketID := range h.joined[s.ID()] {
		h.leaveLocked(ticketID, s.ID())
	}
	delete(h.joined, s.ID())
	if _, ok := h.conns[s.ID()]; ok {
		delete(h.conns, s.ID())
		metrics.WsConnections.Dec()
	}
}

func (h *Hub) leaveLocked(ticketID int64, id string) {
	if room, ok := h.rooms[ticketID]; ok {
		delete(room, id)
		if len(room) == 0 {
			delete(h.rooms, ticketID)
		}
	}
	if tickets, ok := h.joined[id]; ok {
		delete(tickets, ticketID)
		if len(tickets) == 0 {
			delete(h.joined, id)
		}
	}
}

// Broadcast delivers event to the current members of the ticket's room and
// returns how many accepted it. Slow members whose buffer is full miss the
// event; there is no replay.
func (h *Hub) Broadcast(ticketID int64, event Event) (int, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal %s event: %w", event.Event, err)
	}

	h.mu.RLock()
	members := make([]Subscriber, 0, len(h.rooms[ticketID]))
	for _, s := range h.rooms[ticketID] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	metrics.BroadcastsTotal.Inc()
	delivered := 0
	for _, s := range members {
		if s.Send(data) {
			delivered++
			continue
		}
		metrics.DroppedEventsTotal.Inc()
		log.Warn().
			Str("conn_id", s.ID()).
			Int64("ticket_id", ticketID).
			Str("event", event.Event).
			Msg("send buffer full, event dropped")
	}
	return delivered, nil
}

// Members reports how many connections are watching the ticket.
func (h *Hub) Members(ticketID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[ticketID])
}

// Close empties every room and closes connections that support it.
func (h *Hub) Close() {
	h.mu.Lock()
	seen := make(map[string]Subscriber, len(h.conns))
	for id, s := range h.conns {
		seen[id] = s
	}
	for _, room := range h.rooms {
		for id, s := range room {
			seen[id] = s
		}
	}
	metrics.WsConnections.Sub(float64(len(h.conns)))
	h.conns = make(map[string]Subscriber)
	h.rooms = make(map[int64]map[string]Subscriber)
	h.joined = make(map[string]map[int64]struct{})
	h.mu.Unlock()

	for _, s := range seen {
		if c, ok := s.(closer); ok {
			_ = c.Close()
		}
	}
}
