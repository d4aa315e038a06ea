package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10 // 64 KB, plenty for chat frames
	sendBuffer     = 256
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is one live connection. It implements engine.Sender, so the
// engine can fan events to it without knowing about websockets.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	eng *engine.Engine
}

func newClient(id string, conn *websocket.Conn, eng *engine.Engine) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		eng:  eng,
	}
}

// Send encodes the event synchronously and queues the bytes without
// blocking. A slow consumer loses the event rather than stalling the
// room's broadcast.
func (c *Client) Send(event string, data any) {
	buf, err := json.Marshal(OutgoingFrame{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("ws: failed to marshal outgoing frame")
		return
	}

	select {
	case c.send <- buf:
	case <-c.done:
	default:
		log.Warn().Str("connID", c.ID).Str("event", event).Msg("ws: slow consumer, dropping event")
	}
}

// Kick terminates the session after an admin removal. The read pump then
// unwinds through the normal disconnect path, which the engine already
// treats as a no-op for this connection.
func (c *Client) Kick() {
	c.Close()
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump drains c.send onto the socket and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// readPump consumes inbound frames until the connection dies, then runs
// the disconnect cleanup exactly once for whatever room the connection
// was in.
func (c *Client) readPump() {
	defer func() {
		c.Close()
		c.eng.Disconnect(c.ID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("connID", c.ID).Msg("ws: connection closed unexpectedly")
			}
			return
		}
		c.dispatch(raw)
	}
}
