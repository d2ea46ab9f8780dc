// Package server implements the core HTTP and WebSocket server functionality
// for Parley, a room-based realtime chat relay.
//
// The implementation is organized into specialized files: the connection
// registry and room directory hold membership state, the event router drives
// the per-connection state machine, and the hub, client pumps, configuration,
// and HTTP handlers provide the transport shell around them.
package server
