// Package player plays sound files through an external command.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNoCommand = errors.New("player command is empty")

// Exec runs Command with the sound file appended as the last argument.
type Exec struct {
	Command []string
}

func (e Exec) Play(ctx context.Context, path string) error {
	if len(e.Command) == 0 {
		return ErrNoCommand
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sound file: %w", err)
	}

	args := append(append([]string(nil), e.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	log.Debug().Str("module", "player").Str("cmd", strings.Join(cmd.Args, " ")).Msg("play")

	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", e.Command[0], err, strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("%s: %w", e.Command[0], err)
	}
	return nil
}
