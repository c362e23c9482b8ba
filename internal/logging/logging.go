// Package logging sets up the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dkeye/Speaker/internal/config"
)

// Setup routes the global logger to the console at cfg.Level and, when
// cfg.File is set, also to a rotating file at debug level. The returned
// closer stops rotation and closes the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	return setup(os.Stderr, cfg)
}

func setup(console io.Writer, cfg config.LogConfig) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	consoleWriter := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: console}},
		Level:  lvl,
	}

	if cfg.File == "" {
		zerolog.SetGlobalLevel(lvl)
		log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	file := newRotatingFile(cfg)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(consoleWriter, file)).With().Timestamp().Logger()
	return file, nil
}

// rotatingFile is a size and age bounded log file that can also roll over
// at local midnight.
type rotatingFile struct {
	*lumberjack.Logger
	stop chan struct{}
	done chan struct{}
}

func newRotatingFile(cfg config.LogConfig) *rotatingFile {
	f := &rotatingFile{
		Logger: &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
			Compress:   cfg.Compress,
		},
	}
	if cfg.Daily {
		f.stop = make(chan struct{})
		f.done = make(chan struct{})
		go f.rotateDaily(time.Now)
	}
	return f
}

func (f *rotatingFile) rotateDaily(now func() time.Time) {
	defer close(f.done)
	for {
		timer := time.NewTimer(untilMidnight(now()))
		select {
		case <-f.stop:
			timer.Stop()
			return
		case <-timer.C:
			if err := f.Rotate(); err != nil {
				log.Warn().Err(err).Str("module", "logging").Msg("daily rotation")
			}
		}
	}
}

func (f *rotatingFile) Close() error {
	if f.stop != nil {
		close(f.stop)
		<-f.done
		f.stop = nil
	}
	return f.Logger.Close()
}

func untilMidnight(t time.Time) time.Duration {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Sub(t)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
