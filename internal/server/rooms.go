// Package server maps room names to their current membership sets and fans
// out encoded event frames to room members.
package server

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// Sink delivers one encoded frame to a single connection. Deliver reports
// whether the frame was accepted; a false return means the connection is gone
// or its buffer is full, and the frame is dropped for that member.
type Sink interface {
	Deliver(frame []byte) bool
}

type roomMember struct {
	connID string
	sink   Sink
}

// RoomDirectory maps room names to member sets. Rooms are created implicitly
// on first join and dropped when their last member leaves, so a membership
// query for an absent room is a valid query, not an error.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Sink
	log   *slog.Logger
}

// NewRoomDirectory creates an empty directory.
func NewRoomDirectory(log *slog.Logger) *RoomDirectory {
	if log == nil {
		log = slog.Default()
	}
	return &RoomDirectory{
		rooms: make(map[string]map[string]Sink),
		log:   log,
	}
}

// Join adds connID to the room's member set, creating the room entry if it
// does not exist yet. Frames broadcast before this call are never replayed to
// the new member.
func (d *RoomDirectory) Join(room, connID string, sink Sink) {
	d.mu.Lock()
	members, exists := d.rooms[room]
	if !exists {
		members = make(map[string]Sink)
		d.rooms[room] = members
	}
	members[connID] = sink
	count := len(members)
	d.mu.Unlock()

	d.log.Info("member joined room", "room", room, "connId", connID, "members", count)
}

// Leave removes connID from the room's member set. When the set becomes empty
// the room entry is dropped. Leaving a room the connection is not in, or a
// room that does not exist, is a no-op.
func (d *RoomDirectory) Leave(room, connID string) {
	d.mu.Lock()
	members, exists := d.rooms[room]
	if !exists {
		d.mu.Unlock()
		return
	}
	delete(members, connID)
	count := len(members)
	if count == 0 {
		delete(d.rooms, room)
	}
	d.mu.Unlock()

	d.log.Info("member left room", "room", room, "connId", connID, "members", count)
	if count == 0 {
		d.log.Info("room removed", "room", room)
	}
}

// Members returns the connection identifiers currently joined to room. An
// absent room yields an empty slice, never an error.
func (d *RoomDirectory) Members(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Keys(d.rooms[room])
}

// BroadcastToOthers delivers frame to every member of room except exclude.
func (d *RoomDirectory) BroadcastToOthers(room, exclude string, frame []byte) {
	targets := d.snapshot(room, exclude)
	d.deliver(room, targets, frame)
}

// BroadcastToAll delivers frame to every member of room, sender included.
func (d *RoomDirectory) BroadcastToAll(room string, frame []byte) {
	targets := d.snapshot(room, "")
	d.deliver(room, targets, frame)
}

// snapshot captures the current member set of room, minus exclude, so that
// delivery can run without holding the directory lock. Members that join
// after the snapshot miss the frame; that is the delivery guarantee.
func (d *RoomDirectory) snapshot(room, exclude string) []roomMember {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := lo.MapToSlice(d.rooms[room], func(connID string, sink Sink) roomMember {
		return roomMember{connID: connID, sink: sink}
	})
	if exclude == "" {
		return members
	}
	return lo.Filter(members, func(m roomMember, _ int) bool {
		return m.connID != exclude
	})
}

func (d *RoomDirectory) deliver(room string, targets []roomMember, frame []byte) {
	if len(targets) == 0 {
		return
	}

	dropped := 0
	for _, target := range targets {
		if !target.sink.Deliver(frame) {
			dropped++
		}
	}

	d.log.Debug("broadcast dispatched", "room", room, "targets", len(targets), "dropped", dropped)
}
