// Package client is the speaker client: it joins a room, sends tokens queued
// by hotkeys and plays the sounds for tokens relayed back by the server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Speaker/internal/codec"
	"github.com/dkeye/Speaker/internal/domain"
	"github.com/dkeye/Speaker/internal/protocol"
)

var ErrNotConnected = errors.New("session not connected")

type Options struct {
	ServerURI        string
	Room             domain.RoomID
	Key              string
	HandshakeTimeout time.Duration
	Retry            RetryPolicy
	// Dialer defaults to a copy of websocket.DefaultDialer with a cookie
	// jar, so the server sees the same client token across reconnects.
	Dialer *websocket.Dialer
}

type Session struct {
	opts   Options
	codec  *codec.Codec
	player Player
	queue  *Queue

	mu   sync.Mutex
	conn *websocket.Conn
}

func New(opts Options, c *codec.Codec, p Player) *Session {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = protocol.DefaultHandshakeTimeout
	}
	if opts.Dialer == nil {
		d := *websocket.DefaultDialer
		// cookiejar.New only fails on a bad PublicSuffixList
		d.Jar, _ = cookiejar.New(nil)
		opts.Dialer = &d
	}
	return &Session{
		opts:   opts,
		codec:  c,
		player: p,
		queue:  NewQueue(),
	}
}

// Connect runs the handshake, retrying per the session's RetryPolicy until
// the server answers "0", the attempts run out or ctx is cancelled.
func (s *Session) Connect(ctx context.Context) error {
	url, err := protocol.RoomURL(s.opts.ServerURI, s.opts.Room)
	if err != nil {
		return err
	}
	logger := log.With().Str("module", "client").Str("url", url).Logger()
	logger.Info().Msg("connecting to server")

	attempt := 0
	op := func() error {
		attempt++
		conn, err := s.handshake(ctx, url)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("failed to connect")
	}
	if err := backoff.RetryNotify(op, s.opts.Retry.backOff(ctx), notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	logger.Info().Int("attempts", attempt).Msg("connected")
	return nil
}

func (s *Session) handshake(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := s.opts.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if err := protocol.WriteText(conn, s.opts.Key, s.opts.HandshakeTimeout); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send secret: %w", err)
	}
	status, err := protocol.ReadText(conn, s.opts.HandshakeTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read status: %w", err)
	}
	if status != protocol.StatusOK {
		_ = conn.Close()
		return nil, &protocol.RejectedError{Status: status}
	}
	return conn, nil
}

// Enqueue hands a token to the outbound worker. Safe from any goroutine.
func (s *Session) Enqueue(t domain.Token) {
	s.queue.Push(t)
}

// Run drives the connected session until ctx is cancelled or the transport
// fails. A cancelled ctx returns nil.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.worker(gctx, conn) })
	g.Go(func() error { return s.receiver(gctx, ctx, conn) })
	go func() {
		<-gctx.Done()
		_ = conn.Close()
	}()

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Session) worker(ctx context.Context, conn *websocket.Conn) error {
	for {
		t, err := s.queue.Pop(ctx)
		if err != nil {
			return nil
		}
		if err := protocol.WriteText(conn, string(t), s.opts.HandshakeTimeout); err != nil {
			return fmt.Errorf("send token %q: %w", t, err)
		}
		log.Debug().Str("module", "client.worker").Str("token", string(t)).Int("pending", s.queue.Len()).Msg("sent")
	}
}

// receiver plays every relayed token. An unknown token stops playback for
// the rest of the session, but reading goes on: control frames (pings, close)
// are only answered from inside ReadMessage, and the worker keeps sending.
func (s *Session) receiver(ctx, playCtx context.Context, conn *websocket.Conn) error {
	muted := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		if muted {
			continue
		}
		t := domain.Token(data)
		file, ok := s.codec.File(t)
		if !ok {
			log.WithLevel(zerolog.FatalLevel).Str("module", "client.receiver").Str("token", string(t)).Msg("bad sound token, playback stopped")
			muted = true
			continue
		}
		go func() {
			if err := s.player.Play(playCtx, file); err != nil {
				log.Warn().Err(err).Str("module", "client.receiver").Str("file", file).Msg("playback failed")
			}
		}()
	}
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
