package realtime

import (
	"context"
	"sort"
	"sync"

	"realty_messaging/internal/metrics"
	"realty_messaging/pkg/logger"
)

// Hub tracks connected clients and the rooms they subscribed to. It delivers
// events only to clients connected to this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	closed  bool
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

// Register adds the client and subscribes it to its own user room.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.joinLocked(c, UserRoom(c.userID))
	metrics.RealtimeClients.Inc()
	h.log.Debug("Realtime client connected", "client_id", c.id, "user_id", c.userID, "total_clients", len(h.clients))
	return true
}

// Unregister removes the client from every room and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) Join(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	h.joinLocked(c, room)
	return true
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Publish implements Publisher for clients of this process.
func (h *Hub) Publish(room, event string, payload interface{}) {
	frame, err := encodeEnvelope(room, event, payload)
	if err != nil {
		h.log.Error("Failed to encode realtime event", "error", err, "event", event)
		return
	}
	metrics.RealtimePublished.WithLabelValues(event).Inc()
	h.Deliver(room, frame)
}

// Deliver sends an already encoded frame to every member of room. Clients
// whose queue is full are disconnected instead of blocking the publisher.
func (h *Hub) Deliver(room string, frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[room]
	if len(members) == 0 {
		return 0
	}

	// Ordered by client id so delivery order does not depend on map iteration.
	targets := make([]*Client, 0, len(members))
	for c := range members {
		targets = append(targets, c)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	delivered := 0
	for _, c := range targets {
		select {
		case c.send <- frame:
			delivered++
		default:
			h.log.Warn("Realtime client queue full, disconnecting", "client_id", c.id, "user_id", c.userID)
			metrics.RealtimeDropped.Inc()
			h.removeLocked(c)
		}
	}
	return delivered
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.Shutdown()
	return ctx.Err()
}

// Shutdown closes every client and refuses new registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	count := len(h.clients)
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.closed = true
	h.log.Info("Realtime hub stopped", "clients_closed", count)
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.rooms = make(map[string]struct{})
	delete(h.clients, c)
	close(c.send)
	metrics.RealtimeClients.Dec()
}
