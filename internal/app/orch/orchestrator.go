package orch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrUnknownSession = errors.New("unknown session")
)

// Orchestrator routes inbound events to the membership table and fans the
// results out. Events are handled one at a time: validation, mutation and
// broadcast of one event never interleave with another.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy

	mu sync.Mutex
}

func New(reg *app.Registry, rooms core.RoomManager, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms, Policy: policy}
}

// Dispatch handles one decoded event from sid. Room-scoped events take
// (roomId, userId) as their first two arguments.
func (o *Orchestrator) Dispatch(sid core.SessionID, ev core.InboundEvent) error {
	re, ok := roomEvents[ev.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
	}
	m := domain.Member{
		Room: domain.RoomID(ev.StringArg(0)),
		User: domain.UserID(ev.StringArg(1)),
	}
	return o.handleRoomEvent(sid, ev.Name, re, m)
}

// sendTo delivers ev to sid alone.
func (o *Orchestrator) sendTo(sid core.SessionID, ev core.Event) {
	conn, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	frame, err := core.EncodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("event", ev.Name).Msg("send to sender failed")
	}
}

// broadcastFrom delivers ev to every current member of room except from.
// Delivery is fire-and-forget; a full queue is handed to the policy.
func (o *Orchestrator) broadcastFrom(from core.SessionID, room domain.RoomID, ev core.Event) int {
	frame, err := core.EncodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return 0
	}
	sent := 0
	for _, sid := range o.Rooms.MembersOf(room) {
		if sid == from {
			continue
		}
		conn, ok := o.Registry.Lookup(sid)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			o.onSendFailure(room, sid, err)
			continue
		}
		sent++
	}
	log.Debug().Str("module", "orch").Str("from", string(from)).Str("room", string(room)).Str("event", ev.Name).Int("sent_to", sent).Msg("broadcast result")
	return sent
}

func (o *Orchestrator) onSendFailure(room domain.RoomID, sid core.SessionID, err error) {
	log.Warn().Err(err).Str("module", "orch").Str("room", string(room)).Str("sid", string(sid)).Msg("broadcast dropped")
	if o.Policy == nil || !errors.Is(err, core.ErrBackpressure) {
		return
	}
	switch o.Policy.OnBackPressure(room, sid) {
	case app.KickMember:
		o.Registry.Cancel(sid)
	case app.DropFrame:
	}
}
