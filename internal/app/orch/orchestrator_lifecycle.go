package orch

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/rs/zerolog/log"
)

// OnConnect registers a new transport connection. It joins no room.
func (o *Orchestrator) OnConnect(conn core.SignalConnection, cancel context.CancelFunc) core.SessionID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Registry.Register(conn, cancel)
}

// OnDisconnect drops sid from the registry and from every room it joined.
// Former room mates are not notified; only an explicit leave is broadcast.
// Calling it twice is harmless.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Registry.Unregister(sid) {
		return
	}
	left := o.Rooms.LeaveAll(sid)
	rooms := make([]string, 0, len(left))
	for _, id := range left {
		rooms = append(rooms, string(id))
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Strs("rooms", rooms).Msg("disconnected")
}
