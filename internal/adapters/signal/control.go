package signal

import "github.com/dkeye/Huddle/internal/core"

const msgRateLimited = "Rate limited"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendEvent(conn, core.NewEvent(core.EventPong))
}
