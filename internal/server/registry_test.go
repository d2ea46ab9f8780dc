package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *ConnectionRegistry {
	return NewConnectionRegistry(NewIdentityColorAssigner(DefaultMinBrightness))
}

func TestSetIdentityAssignsColor(t *testing.T) {
	registry := newTestRegistry()

	identity, err := registry.SetIdentity("conn-1", "lobby", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "lobby", identity.Room)
	assert.Equal(t, "Alice", identity.Alias)
	assert.Regexp(t, colorPattern, identity.Color)
}

func TestSetIdentityRejectsSecondJoin(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.SetIdentity("conn-1", "lobby", "Alice")
	require.NoError(t, err)

	_, err = registry.SetIdentity("conn-1", "other", "Alice2")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	// The original identity must be untouched.
	identity, err := registry.Get("conn-1")
	require.NoError(t, err)
	assert.Equal(t, "lobby", identity.Room)
	assert.Equal(t, "Alice", identity.Alias)
}

func TestGetUnknownConnection(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestGetReturnsStableIdentity(t *testing.T) {
	registry := newTestRegistry()

	created, err := registry.SetIdentity("conn-1", "lobby", "Alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := registry.Get("conn-1")
		require.NoError(t, err)
		assert.Equal(t, created, got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.SetIdentity("conn-1", "lobby", "Alice")
	require.NoError(t, err)

	registry.Remove("conn-1")
	registry.Remove("conn-1")

	_, err = registry.Get("conn-1")
	assert.ErrorIs(t, err, ErrUnknownConnection)
	assert.Zero(t, registry.Len())
}

func TestRemoveAllowsRejoinUnderNewConnection(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.SetIdentity("conn-1", "lobby", "Alice")
	require.NoError(t, err)
	registry.Remove("conn-1")

	// A fresh transport session gets a fresh identifier; the old one being
	// gone means the name can be reused.
	_, err = registry.SetIdentity("conn-2", "lobby", "Alice")
	assert.NoError(t, err)
}
