package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Speaker/internal/app"
	"github.com/dkeye/Speaker/internal/domain"
	"github.com/dkeye/Speaker/internal/protocol"
)

// handshake runs the server half of the room handshake on a fresh
// connection. It reports whether the connection was admitted; the caller
// closes it otherwise.
func (ctl *SignalWSController) handshake(ws protocol.WSConn, roomID domain.RoomID) bool {
	timeout := ctl.Opts.HandshakeTimeout
	logger := log.With().Str("module", "signal.handshake").Str("room", string(roomID)).Logger()

	if !ctl.Auth.KnowsRoom(roomID) {
		logger.Info().Msg("unknown room")
		protocol.SendBestEffort(ws, protocol.StatusUnknownRoom, timeout)
		return false
	}

	secret, err := protocol.ReadText(ws, timeout)
	if err != nil {
		logger.Info().Err(err).Msg("no secret received")
		return false
	}

	verdict := ctl.Auth.Verify(roomID, secret)
	switch verdict {
	case app.Admit:
	case app.BadSecret:
		protocol.SendBestEffort(ws, protocol.StatusForbidden, timeout)
		if ctl.Auth.OnInvalid == app.RejectInvalidSecret {
			logger.Info().Stringer("verdict", verdict).Msg("invalid secret, rejected")
			return false
		}
		logger.Warn().Stringer("verdict", verdict).Msg("invalid secret, admitting anyway")
	default:
		logger.Info().Stringer("verdict", verdict).Msg("handshake refused")
		return false
	}

	if err := protocol.WriteText(ws, protocol.StatusOK, timeout); err != nil {
		logger.Info().Err(err).Msg("status write failed")
		return false
	}
	return true
}
