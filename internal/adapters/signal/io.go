package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// writePump owns every data write on c. ctx ends with the connection;
// server ends with the process and only then is the peer told the server
// is going away.
func (ctl *SignalWSController) writePump(server, ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			if server.Err() != nil {
				ctl.writeClose(c, websocket.CloseGoingAway, "server shutting down")
			}
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump handles frames one at a time, so utterances from a single
// connection are routed in the order they arrived.
func (ctl *SignalWSController) readPump(server, ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		if server.Err() == nil {
			ctl.writeClose(c, websocket.CloseNormalClosure, "")
		}
		cancel()
		ctl.Orch.OnDisconnect(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))

		if r := panics.Try(func() { ctl.handleSignal(ctx, c, data) }); r != nil {
			log.Error().Str("module", "signal").Str("conn", string(c.id)).
				Str("panic", fmt.Sprint(r.Value)).Msg("handler panicked")
			ctl.sendError(c, core.NewProtocolError("internal error handling message"))
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, c *WsSignalConn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("rejected frame")
		ctl.sendError(c, err)
		return
	}

	switch m := msg.(type) {
	case *protocol.Join:
		ctl.handleJoin(c, m)
	case *protocol.Utterance:
		ctl.handleUtterance(ctx, c, m)
	default:
		ctl.sendError(c, core.NewProtocolError("%w: %q is server-only", core.ErrUnknownType, m.MessageType()))
	}
}

func (ctl *SignalWSController) writeClose(c *WsSignalConn, code int, reason string) {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(ctl.cfg.WriteWait))
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, err error) {
	if err := c.TrySend(protocol.ErrorFrame(err.Error())); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("error frame not delivered")
	}
}
