package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dkeye/Speaker/internal/adapters/hotkey"
	"github.com/dkeye/Speaker/internal/adapters/player"
	"github.com/dkeye/Speaker/internal/client"
	"github.com/dkeye/Speaker/internal/codec"
	"github.com/dkeye/Speaker/internal/config"
	"github.com/dkeye/Speaker/internal/domain"
	"github.com/dkeye/Speaker/internal/logging"
)

func runClient(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadClient(cmd.String("config"))
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	sounds, err := codec.New(cfg.DomainSounds())
	if err != nil {
		return err
	}
	log.Info().Str("module", "client").Int("sounds", sounds.Len()).Msg("sound table loaded")
	sess := client.New(client.Options{
		ServerURI:        cfg.ServerURI,
		Room:             domain.RoomID(cfg.RoomID),
		Key:              cfg.Auth.Key,
		HandshakeTimeout: cfg.Handshake.Timeout,
		Retry: client.RetryPolicy{
			Delay:       cfg.Retry.Delay,
			MaxAttempts: cfg.Retry.MaxAttempts,
		},
	}, sounds, player.Exec{Command: cfg.Player.Command})

	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer sess.Close()

	listener := hotkey.NewListener()
	defer listener.Close()
	for _, h := range cfg.Hotkeys {
		tok, ok := sounds.TokenFor(h.Sound)
		if !ok {
			return fmt.Errorf("hotkey %s: unknown sound %q", h.Name, h.Sound)
		}
		if err := listener.Register(h.Name, h.Keys, func() { sess.Enqueue(tok) }); err != nil {
			return err
		}
	}

	return sess.Run(ctx)
}
