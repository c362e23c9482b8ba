package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Speaker/internal/app"
	"github.com/dkeye/Speaker/internal/core"
	"github.com/dkeye/Speaker/internal/domain"
	"github.com/dkeye/Speaker/internal/protocol"
)

const (
	writeWait         = 5 * time.Second
	defaultSendBuffer = 256
)

type Options struct {
	BasePath         string
	HandshakeTimeout time.Duration
	ReadLimit        int64
	PingPeriod       time.Duration
	SendBuffer       int
}

type SignalWSController struct {
	Orch    *app.Orchestrator
	Auth    *app.Authorizer
	Limiter *RateLimiter
	Opts    Options
}

func NewSignalWSController(orch *app.Orchestrator, auth *app.Authorizer, limiter *RateLimiter, opts Options) *SignalWSController {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = protocol.DefaultHandshakeTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	return &SignalWSController{
		Orch:    orch,
		Auth:    auth,
		Limiter: limiter,
		Opts:    opts,
	}
}

// WsSignalConn implements core.SignalConnection on top of a websocket.
// writePump is the only writer once the handshake is done.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(conn *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request, runs the room handshake and, once the
// connection is admitted, hands it to the read and write pumps.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	logger := log.With().Str("module", "signal").Str("sid", string(sid)).Logger()

	roomID, inBase := protocol.RoomFromPath(c.Request.URL.Path, ctl.Opts.BasePath)
	if !inBase {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// the upgrade response is written by gorilla, so the session cookie set
	// by the middleware has to be passed through explicitly
	var respHeader http.Header
	if cookies := c.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
		respHeader = http.Header{"Set-Cookie": cookies}
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.Opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Opts.ReadLimit)
	}
	clientToken := c.GetString("client_token")
	logger.Info().Str("remote", ws.RemoteAddr().String()).Str("room", string(roomID)).Str("client_token", clientToken).Msg("new WS connection")

	if !ctl.handshake(ws, roomID) {
		_ = ws.Close()
		return
	}

	conn := newWsSignalConn(ws, ctl.Opts.SendBuffer)
	meta := domain.NewMember(clientToken, ws.RemoteAddr().String())
	sess := core.NewMemberSession(meta, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSession(sid, sess, cancel)

	if err := ctl.Orch.Join(sid, roomID); err != nil {
		logger.Error().Err(err).Msg("join after handshake")
		ctl.Orch.Registry.Unbind(sid)
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
