// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// pongWait is how long a connection may stay silent before a read fails.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait so pings keep the read alive.
	pingPeriod = 54 * time.Second
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
)

// Client represents one WebSocket connection in the chat system. It owns the
// transport-side state: the connection, the buffered send channel drained by
// the write pump, and the router session holding the room state machine.
type Client struct {
	id             string
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	addr           string
	closed         bool
	session        *Session
	maxMessageSize int64
	limiter        *tokenBucket
	rateLimit      RateLimitConfig
}

// NewClient creates a Client for an upgraded connection and assigns it a
// fresh connection identifier. The send channel is buffered so broadcasts do
// not block on slow readers.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.cfg
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	c := &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, 256),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		limiter:        newTokenBucket(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:      cfg.RateLimit,
	}
	c.session = NewSession(c.id, c)
	return c
}

// ID returns the connection identifier assigned at creation.
func (c *Client) ID() string {
	return c.id
}

// Deliver enqueues an encoded frame for this connection. It reports false when
// the client is unregistered or its buffer is full; the frame is dropped and
// the connection is left to its own liveness handling (ping/pong deadlines
// reap dead peers through their read pump).
func (c *Client) Deliver(frame []byte) bool {
	return c.hub.safeSend(c, frame)
}

// setupReadConnection configures read deadlines and the pong handler.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.log.Error("set initial read deadline", "addr", c.addr, "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.hub.log.Error("set read deadline in pong handler", "addr", c.addr, "error", err)
		}
		return nil
	})
}

// logReadError logs the read failure that ended the pump, classified so that
// ordinary disconnects stay quiet.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.hub.log.Warn("message exceeded maximum size",
			"addr", c.addr, "maxBytes", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.hub.log.Info("client disconnected", "addr", c.addr, "connId", c.id)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.hub.log.Info("client connection closed", "addr", c.addr, "connId", c.id)
	default:
		c.hub.log.Warn("websocket read error", "addr", c.addr, "connId", c.id, "error", err)
	}
}

// processFrame hands one raw inbound frame to the router. Router rejections
// are logged and acknowledged by doing nothing: a bad event never tears down
// the connection or leaks into other rooms.
func (c *Client) processFrame(raw []byte) {
	if err := c.hub.router.Dispatch(c.session, raw); err != nil {
		c.hub.log.Warn("event rejected", "connId", c.id, "addr", c.addr, "error", err)
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.hub.log.Error("close connection in readPump", "addr", c.addr, "error", err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			break
		}

		if c.limiter != nil && !c.limiter.allow() {
			c.hub.log.Warn("rate limit exceeded; discarding frame",
				"addr", c.addr, "burst", c.rateLimit.Burst, "refill", c.rateLimit.RefillInterval)
			continue
		}

		c.processFrame(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.hub.log.Error("close connection in writePump", "addr", c.addr, "error", err)
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeFrame(frame, ok) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrame writes one outgoing frame, or the close handshake when the send
// channel has been closed. It reports whether the pump should continue.
func (c *Client) writeFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.hub.log.Error("set write deadline", "addr", c.addr, "error", err)
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			c.hub.log.Error("write close message", "addr", c.addr, "error", err)
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if !isExpectedCloseError(err) {
			c.hub.log.Error("write frame", "addr", c.addr, "error", err)
		}
		return false
	}
	return true
}

// writePing keeps the connection alive and reports whether the pump should
// continue.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.hub.log.Error("set write deadline for ping", "addr", c.addr, "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			c.hub.log.Error("write ping", "addr", c.addr, "error", err)
		}
		return false
	}
	return true
}
