package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.design/x/hotkey/mainthread"
)

func main() {
	// hotkeys need the main thread on macOS
	mainthread.Init(run)
}

func run() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Console logger until the config says otherwise.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("speaker failed")
		cancel()
		os.Exit(1)
	}
}

func configFlag(def string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file (yaml, json or toml)",
		Value:   def,
		Sources: cli.EnvVars("SPEAKER_CONFIG"),
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "speaker",
		Usage: "play sounds on every machine in a room at the press of a hotkey",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "relay sound tokens between room members",
				Flags:  []cli.Flag{configFlag("server.yaml")},
				Action: runServer,
			},
			{
				Name:   "client",
				Usage:  "join a room, send tokens on hotkeys and play received ones",
				Flags:  []cli.Flag{configFlag("client.yaml")},
				Action: runClient,
			},
		},
	}
}
