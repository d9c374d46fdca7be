package orch

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomEvent struct {
	failure   string
	broadcast string
	leave     bool
}

// toggle-audio and toggle-video also join the sender, so a media change sent
// before join-room still reaches the room.
var roomEvents = map[string]roomEvent{
	core.EventJoinRoom:    {failure: "Failed to join room", broadcast: core.EventUserConnected},
	core.EventToggleAudio: {failure: "Failed to toggle audio", broadcast: core.EventToggleAudio},
	core.EventToggleVideo: {failure: "Failed to toggle video", broadcast: core.EventToggleVideo},
	core.EventLeave:       {failure: "Failed to leave room", broadcast: core.EventUserDisconnected, leave: true},
}

func (o *Orchestrator) JoinRoom(sid core.SessionID, room domain.RoomID, user domain.UserID) error {
	return o.handleRoomEvent(sid, core.EventJoinRoom, roomEvents[core.EventJoinRoom], domain.Member{Room: room, User: user})
}

func (o *Orchestrator) ToggleAudio(sid core.SessionID, room domain.RoomID, user domain.UserID) error {
	return o.handleRoomEvent(sid, core.EventToggleAudio, roomEvents[core.EventToggleAudio], domain.Member{Room: room, User: user})
}

func (o *Orchestrator) ToggleVideo(sid core.SessionID, room domain.RoomID, user domain.UserID) error {
	return o.handleRoomEvent(sid, core.EventToggleVideo, roomEvents[core.EventToggleVideo], domain.Member{Room: room, User: user})
}

func (o *Orchestrator) Leave(sid core.SessionID, room domain.RoomID, user domain.UserID) error {
	return o.handleRoomEvent(sid, core.EventLeave, roomEvents[core.EventLeave], domain.Member{Room: room, User: user})
}

func (o *Orchestrator) handleRoomEvent(sid core.SessionID, name string, re roomEvent, m domain.Member) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.Registry.Lookup(sid); !ok {
		return fmt.Errorf("%s: %w: %s", name, ErrUnknownSession, sid)
	}

	if err := m.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("event", name).Msg("rejected")
		o.sendTo(sid, core.NewErrorEvent(re.failure))
		return fmt.Errorf("%s: %w", name, err)
	}

	if re.leave {
		o.Rooms.Leave(m.Room, sid)
	} else {
		o.Rooms.Join(m.Room, sid, m.User)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(m.Room)).Str("user", string(m.User)).Str("event", name).Msg("handled")

	o.broadcastFrom(sid, m.Room, core.NewEvent(re.broadcast, string(m.User)))
	return nil
}
