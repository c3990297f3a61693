package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"ticketdesk/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 256
)

// Client is a single WebSocket connection.
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	principal *domain.Principal

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, principal *domain.Principal) *Client {
	return &Client{
		id:        uuid.NewString(),
		hub:       hub,
		conn:      conn,
		principal: principal,
		send:      make(chan []byte, sendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close drops the underlying connection; readPump then cleans up.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) run() {
	c.hub.Attach(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.closeSend()
		_ = c.conn.Close()
		log.Debug().Str("conn_id", c.id).Msg("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", c.id).Msg("websocket read failed")
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.reply(Event{Event: EventError, Data: ErrorData{Code: "INVALID_EVENT", Message: "Malformed event"}})
		return
	}
	if in.TicketID <= 0 && (in.Event == EventJoinTicketRoom || in.Event == EventLeaveTicketRoom) {
		c.reply(Event{Event: EventError, Data: ErrorData{Code: "INVALID_TICKET", Message: "ticketId is required"}})
		return
	}

	ticketID := int64(in.TicketID)
	switch in.Event {
	case EventJoinTicketRoom:
		c.hub.Join(ticketID, c)
		log.Debug().Str("conn_id", c.id).Int64("ticket_id", ticketID).Msg("joined ticket room")
		c.reply(Event{Event: EventJoined, TicketID: ticketID})
	case EventLeaveTicketRoom:
		c.hub.Leave(ticketID, c)
		c.reply(Event{Event: EventLeft, TicketID: ticketID})
	default:
		c.reply(Event{Event: EventError, Data: ErrorData{Code: "UNKNOWN_EVENT", Message: "Unknown event: " + in.Event}})
	}
}

func (c *Client) reply(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if !c.Send(data) {
		log.Warn().Str("conn_id", c.id).Str("event", ev.Event).Msg("reply dropped")
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
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
