package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvelopeStampsIDAndColor(t *testing.T) {
	sentAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := InboundMessage{
		DateCreated: sentAt,
		Content:     "hello there",
		Sender:      MessageSender{ID: "conn-a", Alias: "Alice"},
	}
	sender := Identity{Room: "lobby", Alias: "Alice", Color: "#a1b2c3"}

	envelope := buildEnvelope(in, sender)

	_, err := uuid.Parse(envelope.ID)
	require.NoError(t, err, "message id must be a UUID")

	assert.Equal(t, "#a1b2c3", envelope.Color)
	assert.Equal(t, "hello there", envelope.Content)
	assert.Equal(t, in.Sender, envelope.Sender)
	assert.True(t, envelope.DateCreated.Equal(sentAt))
}

func TestBuildEnvelopeIDsAreUnique(t *testing.T) {
	in := InboundMessage{Content: "x"}
	sender := Identity{Color: "#ffffff"}

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		envelope := buildEnvelope(in, sender)
		_, dup := seen[envelope.ID]
		require.False(t, dup, "duplicate envelope id %s", envelope.ID)
		seen[envelope.ID] = struct{}{}
	}
}
