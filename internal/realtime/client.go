package realtime

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
	"realty_messaging/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024

	// inbound frames per second a client may send, with a short burst
	inboundRate  = 10
	inboundBurst = 20
)

var clientIDCounter atomic.Uint64

// Client is one websocket connection of an authenticated user.
type Client struct {
	id     uint64
	userID uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	log    logger.Logger

	// limiter is only touched by readPump.
	limiter *rate.Limiter

	// rooms is guarded by hub.mu.
	rooms map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, buffer int, log logger.Logger) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		id:      clientIDCounter.Add(1),
		userID:  userID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, buffer),
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		rooms:   make(map[string]struct{}),
	}
}

func (c *Client) ID() uint64 {
	return c.id
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Start registers the client with the hub and runs its pumps. It returns
// false when the hub is already shut down.
func (c *Client) Start() bool {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error("Failed to set read deadline", "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Envelope
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "error", err, "client_id", c.id)
			}
			return
		}
		if !c.limiter.Allow() {
			c.reply(EventError, map[string]string{"error": "rate limit exceeded"})
			continue
		}
		c.handle(frame)
	}
}

func (c *Client) handle(frame Envelope) {
	switch frame.Event {
	case EventPing:
		c.reply(EventPong, nil)
	case EventJoin, EventLeave:
		var req JoinRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.Room == "" {
			c.reply(EventError, map[string]string{"error": "room is required"})
			return
		}
		if frame.Event == EventLeave {
			c.hub.Leave(c, req.Room)
			return
		}
		if !CanJoin(c.userID, req.Room) {
			c.reply(EventError, map[string]string{"error": "cannot join room", "room": req.Room})
			return
		}
		c.hub.Join(c, req.Room)
	default:
		c.reply(EventError, map[string]string{"error": "unknown event", "event": frame.Event})
	}
}

// reply queues a frame for this client only. The hub lock guards against
// sending on a queue that Unregister already closed.
func (c *Client) reply(event string, payload interface{}) {
	frame, err := encodeEnvelope("", event, payload)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Failed to write websocket frame", "error", err, "client_id", c.id)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
