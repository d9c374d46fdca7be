package signal

import (
	"errors"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/rs/zerolog/log"
)

// handleRoomEvent forwards a room-scoped event. Validation failures are
// already reported to the sender by the orchestrator.
func (ctl *SignalWSController) handleRoomEvent(sid core.SessionID, ev core.InboundEvent) {
	err := ctl.Orch.Dispatch(sid, ev)
	switch {
	case err == nil:
	case errors.Is(err, orch.ErrUnknownEvent):
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("event", ev.Name).Msg("unknown signal")
	default:
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("room event rejected")
	}
}
