// Package server routes inbound event frames through a per-connection state
// machine and fans the resulting events out to room members.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

type connState int

const (
	// stateUnjoined is the initial state: the transport is open but the
	// connection has not joined a room yet.
	stateUnjoined connState = iota
	// stateJoined means the connection has a room, alias, and color.
	stateJoined
	// stateClosed is terminal; no further events are dispatched.
	stateClosed
)

// Session is the router's handle for one live connection: its identifier, its
// delivery sink, and its position in the state machine. Session state is only
// touched under its own mutex, which also serializes event handling for a
// single connection.
type Session struct {
	id   string
	sink Sink

	mu    sync.Mutex
	state connState
}

// NewSession creates a session in the unjoined state.
func NewSession(id string, sink Sink) *Session {
	return &Session{id: id, sink: sink}
}

// ID returns the connection identifier of this session.
func (s *Session) ID() string {
	return s.id
}

// EventRouter validates inbound events against the connection's current state
// and dispatches them to the registry and room directory. All returned errors
// are local-recoverable: the caller logs them and keeps the connection
// running, so one misbehaving connection never affects other rooms.
type EventRouter struct {
	registry *ConnectionRegistry
	rooms    *RoomDirectory
	log      *slog.Logger
}

// NewEventRouter wires a router to its membership state.
func NewEventRouter(registry *ConnectionRegistry, rooms *RoomDirectory, log *slog.Logger) *EventRouter {
	if log == nil {
		log = slog.Default()
	}
	return &EventRouter{
		registry: registry,
		rooms:    rooms,
		log:      log,
	}
}

// Dispatch decodes one inbound frame and runs the matching transition. Events
// arriving after the session closed are rejected with ErrInvalidState.
func (er *EventRouter) Dispatch(s *Session, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return ErrInvalidState
	}

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch frame.Event {
	case EventJoinRoom:
		return er.handleJoinRoom(s, frame.Payload)
	case EventTyping:
		return er.handleTyping(s)
	case EventSendMessage:
		return er.handleSendMessage(s, frame.Payload)
	default:
		return fmt.Errorf("%w: unknown event %q", ErrInvalidPayload, frame.Event)
	}
}

// handleJoinRoom runs the Unjoined -> Joined transition: record identity,
// join the room, and announce the new member to everyone already there.
func (er *EventRouter) handleJoinRoom(s *Session, payload json.RawMessage) error {
	if s.state != stateUnjoined {
		return fmt.Errorf("%w: join-room while already joined", ErrInvalidState)
	}

	var join JoinRoomPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if join.Room == "" || join.Alias == "" {
		return fmt.Errorf("%w: room and alias must be non-empty", ErrInvalidPayload)
	}

	identity, err := er.registry.SetIdentity(s.id, join.Room, join.Alias)
	if err != nil {
		return err
	}
	er.rooms.Join(join.Room, s.id, s.sink)
	s.state = stateJoined

	frame, err := encodeFrame(EventJoinedRoom, join.Alias)
	if err != nil {
		return err
	}
	er.rooms.BroadcastToOthers(join.Room, s.id, frame)

	er.log.Info("connection joined room",
		"connId", s.id, "room", join.Room, "alias", join.Alias, "color", identity.Color)
	return nil
}

// handleTyping relays the typing signal to the other members of the
// connection's room. No payload, no state change.
func (er *EventRouter) handleTyping(s *Session) error {
	if s.state != stateJoined {
		return fmt.Errorf("%w: typing before join", ErrInvalidState)
	}

	identity, err := er.registry.Get(s.id)
	if err != nil {
		return err
	}

	frame, err := encodeFrame(EventTyping, nil)
	if err != nil {
		return err
	}
	er.rooms.BroadcastToOthers(identity.Room, s.id, frame)
	return nil
}

// handleSendMessage finalizes the client-submitted message into an envelope
// and broadcasts it to the whole room, sender included. The sender reconciles
// its own echo by comparing sender.id against its connection identifier.
// Content is not re-validated here; suppressing empty input is the sending
// client's job.
func (er *EventRouter) handleSendMessage(s *Session, payload json.RawMessage) error {
	if s.state != stateJoined {
		return fmt.Errorf("%w: send-message before join", ErrInvalidState)
	}

	var in InboundMessage
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	identity, err := er.registry.Get(s.id)
	if err != nil {
		return err
	}

	envelope := buildEnvelope(in, identity)
	frame, err := encodeFrame(EventMessageReceived, envelope)
	if err != nil {
		return err
	}
	er.rooms.BroadcastToAll(identity.Room, frame)

	er.log.Debug("message broadcast",
		"connId", s.id, "room", identity.Room, "messageId", envelope.ID)
	return nil
}

// Disconnect runs the transition to the terminal Closed state. If the
// connection was joined, it is removed from its room first and the departure
// notice goes to the members that remain, then the identity record is torn
// down. Disconnecting an already closed session fails with ErrInvalidState so
// a racing double-close cannot broadcast twice.
func (er *EventRouter) Disconnect(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return ErrInvalidState
	}

	if s.state == stateJoined {
		identity, err := er.registry.Get(s.id)
		if err != nil {
			s.state = stateClosed
			return err
		}

		er.rooms.Leave(identity.Room, s.id)

		frame, err := encodeFrame(EventDisconnectedUser, identity.Alias+" left the conversation")
		if err == nil {
			er.rooms.BroadcastToAll(identity.Room, frame)
		}

		er.registry.Remove(s.id)
		er.log.Info("connection left room",
			"connId", s.id, "room", identity.Room, "alias", identity.Alias)
	}

	s.state = stateClosed
	return nil
}
