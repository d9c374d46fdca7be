package app

import (
	"context"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry owns every live connection, keyed by its server-assigned id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	newID    func() core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		newID:    func() core.SessionID { return core.SessionID(uuid.NewString()) },
	}
}

// Register adds conn and returns its new id. cancel, if set, ends the
// connection's pumps and is used to disconnect it from the server side.
func (r *Registry) Register(conn core.SignalConnection, cancel context.CancelFunc) core.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	sid := r.newID()
	for r.sessions[sid] != nil {
		sid = r.newID()
	}
	r.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("registered connection")
	return sid
}

// Unregister removes sid. It reports false if sid was already gone.
func (r *Registry) Unregister(sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unregistered connection")
	return true
}

func (r *Registry) Lookup(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cancel asks the transport to drop sid. Cleanup happens on the regular
// disconnect path once the pumps exit.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
