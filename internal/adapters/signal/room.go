package signal

import (
	"context"

	"github.com/AntDavi/translation-server/internal/app/orch"
	"github.com/AntDavi/translation-server/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleJoin binds the connection to a room. A second join on the same
// connection moves it.
func (ctl *SignalWSController) handleJoin(conn *WsSignalConn, msg *protocol.Join) {
	if _, err := ctl.Orch.Join(conn, msg); err != nil {
		if orch.IsProtocolError(err) {
			ctl.sendError(conn, err)
			return
		}
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Msg("join failed")
	}
}

func (ctl *SignalWSController) handleUtterance(ctx context.Context, conn *WsSignalConn, msg *protocol.Utterance) {
	res, err := ctl.Orch.OnUtterance(ctx, conn, msg)
	if err != nil {
		if orch.IsProtocolError(err) {
			ctl.sendError(conn, err)
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Msg("utterance failed")
		return
	}
	log.Debug().Str("module", "signal").Str("conn", string(conn.id)).
		Int("recipients", len(res.Deliveries)).Msg("utterance routed")
}
