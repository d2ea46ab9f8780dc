// Package server tracks per-connection ephemeral identity: the room a
// connection joined, its alias, and its assigned display color.
package server

import "sync"

// Identity is the ephemeral record stored for a joined connection. Alias and
// Color are immutable for the lifetime of the connection once set.
type Identity struct {
	Room  string
	Alias string
	Color string
}

// ConnectionRegistry owns the identity records of all live connections, keyed
// by connection identifier. Records are created on join and destroyed on
// transport close; no other component writes them.
type ConnectionRegistry struct {
	mu         sync.RWMutex
	identities map[string]Identity
	colors     *IdentityColorAssigner
}

// NewConnectionRegistry creates an empty registry that assigns colors through
// the given assigner.
func NewConnectionRegistry(colors *IdentityColorAssigner) *ConnectionRegistry {
	return &ConnectionRegistry{
		identities: make(map[string]Identity),
		colors:     colors,
	}
}

// SetIdentity records the room and alias for connID and assigns it a color.
// A connection may be given an identity at most once; a second call fails with
// ErrAlreadyJoined.
func (r *ConnectionRegistry) SetIdentity(connID, room, alias string) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.identities[connID]; exists {
		return Identity{}, ErrAlreadyJoined
	}

	identity := Identity{
		Room:  room,
		Alias: alias,
		Color: r.colors.Generate(),
	}
	r.identities[connID] = identity
	return identity, nil
}

// Get returns the identity record for connID, or ErrUnknownConnection if the
// connection never joined or has already been removed.
func (r *ConnectionRegistry) Get(connID string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, exists := r.identities[connID]
	if !exists {
		return Identity{}, ErrUnknownConnection
	}
	return identity, nil
}

// Remove deletes the identity record for connID. Removing a connection that
// has no record is a no-op, not an error.
func (r *ConnectionRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.identities, connID)
}

// Len reports how many connections currently have an identity.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.identities)
}
