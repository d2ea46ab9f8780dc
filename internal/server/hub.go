// Package server coordinates client registration, room fan-out, and
// connection cleanup for the Parley WebSocket relay via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hub owns the set of live WebSocket clients and their pump goroutines. It is
// an explicit instance constructed once at startup and handed to the HTTP
// handlers; there is no package-level hub. Room-directed fan-out happens in
// the RoomDirectory, so the hub only deals in connection lifecycle.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	router     *EventRouter
	cfg        Config
	log        *slog.Logger
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a hub ready to manage connections, routing inbound events
// through the given router.
func NewHub(router *EventRouter, cfg Config, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		router:     router,
		cfg:        cfg,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands a client to the hub, which launches its pump goroutines.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// safeSend enqueues a frame for a client if it is still registered. The lock
// is held for the whole send so the channel cannot be closed mid-send.
func (h *Hub) safeSend(client *Client, frame []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[client]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- frame:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. It should be called in its own goroutine; it returns only
// when the hub shuts down.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("nil client registration; skipping")
				continue
			}
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient records the client, starts its pumps, and greets it with a
// connected frame carrying its connection identifier. Clients echo that id as
// the declared sender id on messages, the same way a socket-session id would
// reach them during a handshake.
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client] = true
	count := len(h.clients)
	h.mutex.Unlock()

	h.log.Info("client registered", "addr", client.addr, "connId", client.id, "total", count)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()

	frame, err := encodeFrame(EventConnected, ConnectedPayload{ID: client.id})
	if err != nil {
		h.log.Error("encode connected frame", "connId", client.id, "error", err)
		return
	}
	if !h.safeSend(client, frame) {
		h.log.Warn("connected frame not delivered", "connId", client.id)
	}
}

// unregisterClient fires the router's disconnect transition, which announces
// the departure to the remaining room members, then drops the client and
// closes its send channel.
func (h *Hub) unregisterClient(client *Client) {
	if err := h.router.Disconnect(client.session); err != nil {
		h.log.Debug("disconnect transition skipped", "connId", client.id, "error", err)
	}

	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client)
	client.closed = true
	count := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock.
	close(client.send)
	h.log.Info("client unregistered", "addr", client.addr, "connId", client.id, "total", count)
}

// shutdownClients closes every active connection and send channel so both
// pumps of each client unwind promptly.
func (h *Hub) shutdownClients() {
	h.log.Info("shutting down all client connections")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		client.closed = true
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Error("close client connection", "addr", client.addr, "error", err)
			}
		}
	}

	h.log.Info("closed client connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown and waits for the event loop and all
// pump goroutines to finish, or for the timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("initiating hub shutdown")

	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timeout reached; some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
