// Package server defines the sentinel errors shared by the registry, room
// directory, and event router.
package server

import (
	"errors"
	"strings"
)

var (
	// ErrAlreadyJoined reports a second identity assignment for a
	// connection that has already joined a room.
	ErrAlreadyJoined = errors.New("connection already joined a room")

	// ErrUnknownConnection reports a lookup for a connection with no
	// recorded identity.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrInvalidState reports an event received in a state that does not
	// accept it, including any event after the connection has closed.
	ErrInvalidState = errors.New("event not valid in current connection state")

	// ErrInvalidPayload reports an event payload that failed the router's
	// minimal validation, such as an empty room or alias on join.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
