// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in room test page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

// sessionFieldPattern is the charset allowed for room names and aliases.
// Length bounds are enforced separately by the validator tags.
var sessionFieldPattern = regexp.MustCompile(`^[A-Za-z0-9-_\s]+$`)

// sessionRequest carries the out-of-band room and alias supplied as query
// parameters before the connection emits join-room. The full pattern is
// enforced here at the door; the router itself only re-checks non-emptiness.
type sessionRequest struct {
	Room  string `validate:"required,min=2,max=32,sessionfield"`
	Alias string `validate:"required,min=2,max=32,sessionfield"`
}

// Handlers bundles the HTTP endpoints with the hub and policies they depend
// on. It is constructed once at startup; nothing here is package-global.
type Handlers struct {
	hub      *Hub
	origins  *originPolicy
	upgrader websocket.Upgrader
	validate *validator.Validate
	log      *slog.Logger
}

// NewHandlers wires the endpoint handlers to the hub and derives the origin
// policy and session validator from the configuration.
func NewHandlers(hub *Hub, cfg Config, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}

	validate := validator.New()
	_ = validate.RegisterValidation("sessionfield", func(fl validator.FieldLevel) bool {
		return sessionFieldPattern.MatchString(fl.Field().String())
	})

	origins := newOriginPolicy(cfg.AllowedOrigins, log)

	h := &Handlers{
		hub:      hub,
		origins:  origins,
		validate: validate,
		log:      log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origins.check,
	}
	return h
}

// WebSocket handles upgrade requests for /ws. The request must be a GET and
// carry valid room and alias query parameters; the upgraded connection is then
// registered with the hub, which launches its pumps and greets it with its
// connection identifier.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	session := sessionRequest{
		Room:  r.URL.Query().Get("room"),
		Alias: r.URL.Query().Get("alias"),
	}
	if err := h.validate.Struct(session); err != nil {
		h.log.Warn("rejected session request", "addr", r.RemoteAddr, "error", err)
		http.Error(w, "room and alias must be 2-32 characters of letters, digits, spaces, '-' or '_'", http.StatusUnprocessableEntity)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr)
	h.hub.Register(client)
}

// Health provides a simple health check endpoint that returns server status.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Parley relay is running!")
}

// TestPage serves an HTML page for exercising the room flow: pick a room and
// alias, connect, and exchange messages with typing and presence notices.
func (h *Handlers) TestPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		h.log.Error("write test page", "error", err)
	}
}
