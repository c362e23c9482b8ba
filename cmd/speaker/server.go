package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Speaker/internal/adapters/http"
	wssignal "github.com/dkeye/Speaker/internal/adapters/signal"
	"github.com/dkeye/Speaker/internal/app"
	"github.com/dkeye/Speaker/internal/config"
	"github.com/dkeye/Speaker/internal/core"
	"github.com/dkeye/Speaker/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadServer(cmd.String("config"))
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	onInvalid, err := app.ParseInvalidSecretPolicy(cfg.Auth.InvalidSecret)
	if err != nil {
		return err
	}
	action, err := app.ParseBackpressureAction(cfg.Relay.OnBackpressure)
	if err != nil {
		return err
	}

	rooms := cfg.DomainRooms()
	reg := app.NewRegistry()
	orch := &app.Orchestrator{
		Registry:     reg,
		Rooms:        core.NewRoomManager(rooms),
		Policy:       app.SimplePolicy{Action: action},
		EchoToSender: cfg.Relay.EchoToSender,
	}
	ctl := wssignal.NewSignalWSController(
		orch,
		app.NewAuthorizer(rooms, onInvalid),
		wssignal.NewRateLimiter(cfg.Relay.RateLimit, cfg.Relay.Burst),
		wssignal.Options{
			BasePath:         cfg.BasePath,
			HandshakeTimeout: cfg.Handshake.Timeout,
			ReadLimit:        cfg.ReadLimit,
			PingPeriod:       cfg.PingPeriod,
			SendBuffer:       cfg.Relay.SendBuffer,
		},
	)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.SetupRouter(ctx, cfg, orch, ctl),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Speaker server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		// hijacked websockets are not tracked by Shutdown
		n := reg.CancelAll()
		log.Info().Int("sessions", n).Msg("sessions cancelled")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited gracefully")
		return nil
	})
	return g.Wait()
}
