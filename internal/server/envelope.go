// Package server finalizes client-submitted messages into broadcastable
// envelopes.
package server

import "github.com/google/uuid"

// buildEnvelope stamps a fresh message id and the sender's authoritative color
// onto a client-submitted message. The client-declared color, if any, is never
// trusted; the registry record wins. DateCreated is passed through unchanged
// so the sender's echoed copy matches its optimistic local timestamp.
func buildEnvelope(in InboundMessage, sender Identity) MessageEnvelope {
	return MessageEnvelope{
		ID:          uuid.NewString(),
		DateCreated: in.DateCreated,
		Content:     in.Content,
		Sender:      in.Sender,
		Color:       sender.Color,
	}
}
