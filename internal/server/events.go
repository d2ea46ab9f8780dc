// Package server defines the JSON wire format exchanged with chat clients:
// named event frames and their payload types.
package server

import (
	"encoding/json"
	"time"
)

// Inbound event names (client to server).
const (
	EventJoinRoom    = "join-room"
	EventTyping      = "typing"
	EventSendMessage = "send-message"
)

// Outbound event names (server to client).
const (
	EventConnected        = "connected"
	EventJoinedRoom       = "joined-room"
	EventMessageReceived  = "message-received"
	EventDisconnectedUser = "disconnected-user"
)

// Frame is the envelope for every event on the wire. Payload is left raw on
// the inbound path so the router can decode it per event name.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoomPayload carries the room and alias a client joins with.
type JoinRoomPayload struct {
	Room  string `json:"room"`
	Alias string `json:"alias"`
}

// ConnectedPayload tells a freshly upgraded client its connection identifier,
// which it echoes later as the declared sender id on messages.
type ConnectedPayload struct {
	ID string `json:"id"`
}

// MessageSender identifies the declared author of a message.
type MessageSender struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

// InboundMessage is the client-submitted part of a chat message. DateCreated
// is the client's optimistic send time and is passed through unchanged.
type InboundMessage struct {
	DateCreated time.Time     `json:"dateCreated"`
	Content     string        `json:"content"`
	Sender      MessageSender `json:"sender"`
}

// MessageEnvelope is the server-finalized message record broadcast to a room.
// The id and color are server-assigned; everything else comes from the client.
type MessageEnvelope struct {
	ID          string        `json:"id"`
	DateCreated time.Time     `json:"dateCreated"`
	Content     string        `json:"content"`
	Sender      MessageSender `json:"sender"`
	Color       string        `json:"color"`
}

// encodeFrame marshals a named event with its payload into a wire frame.
func encodeFrame(event string, payload any) ([]byte, error) {
	frame := Frame{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		frame.Payload = raw
	}
	return json.Marshal(frame)
}
