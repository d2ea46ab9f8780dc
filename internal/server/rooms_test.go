package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures delivered frames for assertions.
type recordingSink struct {
	mu     sync.Mutex
	frames [][]byte
	reject bool
}

func (s *recordingSink) Deliver(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// decodedFrames returns everything delivered so far, decoded off the wire.
func (s *recordingSink) decodedFrames(t *testing.T) []Frame {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := make([]Frame, 0, len(s.frames))
	for _, raw := range s.frames {
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		frames = append(frames, frame)
	}
	return frames
}

func TestJoinCreatesRoomImplicitly(t *testing.T) {
	rooms := NewRoomDirectory(nil)

	assert.Empty(t, rooms.Members("lobby"))

	rooms.Join("lobby", "conn-1", &recordingSink{})
	assert.ElementsMatch(t, []string{"conn-1"}, rooms.Members("lobby"))
}

func TestLeaveDropsEmptyRoom(t *testing.T) {
	rooms := NewRoomDirectory(nil)

	rooms.Join("lobby", "conn-1", &recordingSink{})
	rooms.Join("lobby", "conn-2", &recordingSink{})

	rooms.Leave("lobby", "conn-1")
	assert.ElementsMatch(t, []string{"conn-2"}, rooms.Members("lobby"))

	rooms.Leave("lobby", "conn-2")
	assert.Empty(t, rooms.Members("lobby"))

	// The room entry is gone; broadcasting into it is a no-op.
	rooms.BroadcastToAll("lobby", []byte(`{"event":"typing"}`))
}

func TestLeaveIsIdempotent(t *testing.T) {
	rooms := NewRoomDirectory(nil)

	rooms.Join("lobby", "conn-1", &recordingSink{})
	rooms.Leave("lobby", "conn-1")
	rooms.Leave("lobby", "conn-1")
	rooms.Leave("never-existed", "conn-1")

	assert.Empty(t, rooms.Members("lobby"))
}

func TestMembersOfAbsentRoom(t *testing.T) {
	rooms := NewRoomDirectory(nil)

	// Absent room is valid query state, never an error.
	assert.Empty(t, rooms.Members("ghost"))
}

func TestBroadcastToOthersExcludesSender(t *testing.T) {
	rooms := NewRoomDirectory(nil)
	sender := &recordingSink{}
	peerA := &recordingSink{}
	peerB := &recordingSink{}

	rooms.Join("lobby", "sender", sender)
	rooms.Join("lobby", "peer-a", peerA)
	rooms.Join("lobby", "peer-b", peerB)

	frame := []byte(`{"event":"typing"}`)
	rooms.BroadcastToOthers("lobby", "sender", frame)

	assert.Zero(t, sender.count())
	assert.Equal(t, 1, peerA.count())
	assert.Equal(t, 1, peerB.count())
}

func TestBroadcastToAllIncludesSender(t *testing.T) {
	rooms := NewRoomDirectory(nil)
	sender := &recordingSink{}
	peer := &recordingSink{}

	rooms.Join("lobby", "sender", sender)
	rooms.Join("lobby", "peer", peer)

	rooms.BroadcastToAll("lobby", []byte(`{"event":"message-received"}`))

	assert.Equal(t, 1, sender.count())
	assert.Equal(t, 1, peer.count())
}

func TestBroadcastDoesNotCrossRooms(t *testing.T) {
	rooms := NewRoomDirectory(nil)
	lobbyist := &recordingSink{}
	outsider := &recordingSink{}

	rooms.Join("lobby", "conn-1", lobbyist)
	rooms.Join("elsewhere", "conn-2", outsider)

	rooms.BroadcastToAll("lobby", []byte(`{"event":"typing"}`))

	assert.Equal(t, 1, lobbyist.count())
	assert.Zero(t, outsider.count())
}

func TestBroadcastSurvivesRejectingSink(t *testing.T) {
	rooms := NewRoomDirectory(nil)
	healthy := &recordingSink{}
	dead := &recordingSink{reject: true}

	rooms.Join("lobby", "healthy", healthy)
	rooms.Join("lobby", "dead", dead)

	rooms.BroadcastToAll("lobby", []byte(`{"event":"typing"}`))

	// A failed delivery drops the frame for that member only.
	assert.Equal(t, 1, healthy.count())
	assert.Zero(t, dead.count())
	assert.Len(t, rooms.Members("lobby"), 2)
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	rooms := NewRoomDirectory(nil)
	frame := []byte(`{"event":"typing"}`)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", n)
			sink := &recordingSink{}
			for j := 0; j < 50; j++ {
				rooms.Join("lobby", connID, sink)
				rooms.BroadcastToOthers("lobby", connID, frame)
				rooms.Leave("lobby", connID)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, rooms.Members("lobby"))
}
