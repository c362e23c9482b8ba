package protocol

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

var _ WSConn = (*websocket.Conn)(nil)

// WriteText writes one text frame bounded by timeout. A zero timeout
// leaves the deadline unset.
func WriteText(c WSConn, msg string, timeout time.Duration) error {
	if timeout > 0 {
		if err := c.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
		defer c.SetWriteDeadline(time.Time{})
	}
	return c.WriteMessage(websocket.TextMessage, []byte(msg))
}

// ReadText waits up to timeout for the next frame. Deadline expiry is
// reported as ErrHandshakeTimeout; the connection is unusable afterwards.
func ReadText(c WSConn, timeout time.Duration) (string, error) {
	if timeout > 0 {
		if err := c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
		defer c.SetReadDeadline(time.Time{})
	}
	_, data, err := c.ReadMessage()
	if err != nil {
		if isTimeout(err) {
			return "", ErrHandshakeTimeout
		}
		return "", err
	}
	return string(data), nil
}

// SendBestEffort is fire-and-forget with a timeout: the status is written
// if the peer is still there, any failure is logged at debug and dropped.
func SendBestEffort(c WSConn, status string, timeout time.Duration) {
	if err := WriteText(c, status, timeout); err != nil {
		log.Debug().Err(err).Str("module", "protocol").Str("status", status).Msg("best-effort send dropped")
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
