package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Speaker/internal/domain"
)

const envPrefix = "SPEAKER"

// Routes owned by the HTTP adapter. Rooms are served from whatever path is
// left, so a room may not land on one of these.
const (
	HealthPath = "/healthz"
	APIPrefix  = "/api"
)

var (
	ErrNoRooms       = errors.New("no rooms configured")
	ErrMissingServer = errors.New("server_uri is required")
	ErrMissingRoom   = errors.New("room_id is required")
	ErrReservedRoom  = errors.New("room id collides with a built-in route")
)

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	// MaxSize is in megabytes, MaxAge in days. Daily also rotates at local midnight.
	MaxSize    int  `mapstructure:"max_size"`
	MaxAge     int  `mapstructure:"max_age"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
	Daily      bool `mapstructure:"daily"`
}

type HandshakeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type RoomConfig struct {
	ID      string   `mapstructure:"id"`
	Secrets []string `mapstructure:"secrets"`
}

type RelayConfig struct {
	EchoToSender   bool    `mapstructure:"echo_to_sender"`
	OnBackpressure string  `mapstructure:"on_backpressure"`
	SendBuffer     int     `mapstructure:"send_buffer"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	Burst          int     `mapstructure:"burst"`
}

type AuthConfig struct {
	Key           string `mapstructure:"key"`
	InvalidSecret string `mapstructure:"invalid_secret"`
}

type Server struct {
	Mode          string          `mapstructure:"mode"`
	URI           string          `mapstructure:"uri"`
	Port          int             `mapstructure:"port"`
	BasePath      string          `mapstructure:"base_path"`
	ReadLimit     int64           `mapstructure:"read_limit"`
	PingPeriod    time.Duration   `mapstructure:"ping_period"`
	SessionSecret string          `mapstructure:"session_secret"`
	Rooms         []RoomConfig    `mapstructure:"rooms"`
	Handshake     HandshakeConfig `mapstructure:"handshake"`
	Auth          AuthConfig      `mapstructure:"auth"`
	Relay         RelayConfig     `mapstructure:"relay"`
	Log           LogConfig       `mapstructure:"log"`
}

// Addr is the listen address built from uri and port.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.URI, s.Port)
}

// RoomPath is the request path a client dials to join id.
func (s *Server) RoomPath(id domain.RoomID) string {
	return strings.TrimSuffix(s.BasePath, "/") + "/" + string(id)
}

func isReservedPath(p string) bool {
	return p == HealthPath || p == APIPrefix || strings.HasPrefix(p, APIPrefix+"/")
}

// DomainRooms converts the room table for the core layer.
func (s *Server) DomainRooms() []domain.Room {
	out := make([]domain.Room, 0, len(s.Rooms))
	for _, r := range s.Rooms {
		out = append(out, domain.Room{ID: domain.RoomID(r.ID), Secrets: r.Secrets})
	}
	return out
}

type SoundConfig struct {
	Token string `mapstructure:"token"`
	File  string `mapstructure:"file"`
}

type HotkeyConfig struct {
	Name  string `mapstructure:"name"`
	Keys  string `mapstructure:"keys"`
	Sound string `mapstructure:"sound"`
}

type RetryConfig struct {
	Delay       time.Duration `mapstructure:"delay"`
	MaxAttempts uint64        `mapstructure:"max_attempts"`
}

type PlayerConfig struct {
	Command []string `mapstructure:"command"`
}

type Client struct {
	ServerURI string          `mapstructure:"server_uri"`
	RoomID    string          `mapstructure:"room_id"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Handshake HandshakeConfig `mapstructure:"handshake"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Sounds    []SoundConfig   `mapstructure:"sounds"`
	Hotkeys   []HotkeyConfig  `mapstructure:"hotkeys"`
	Player    PlayerConfig    `mapstructure:"player"`
	Log       LogConfig       `mapstructure:"log"`
}

// DomainSounds converts the sound table for the codec.
func (c *Client) DomainSounds() []domain.Sound {
	out := make([]domain.Sound, 0, len(c.Sounds))
	for _, s := range c.Sounds {
		out = append(out, domain.Sound{Token: domain.Token(s.Token), File: s.File})
	}
	return out
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.max_backups", 0)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.daily", true)
	v.SetDefault("handshake.timeout", "5s")
	return v
}

func read(v *viper.Viper, path string) error {
	if path == "" {
		log.Warn().Str("module", "config").Msg("no config file given, using defaults and env")
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	log.Info().Str("module", "config").Str("file", v.ConfigFileUsed()).Msg("loaded config")
	return nil
}

// LoadServer reads the server config. The file type follows the extension.
func LoadServer(path string) (*Server, error) {
	v := newViper(path)

	v.SetDefault("mode", "release")
	v.SetDefault("uri", "")
	v.SetDefault("port", 8080)
	v.SetDefault("base_path", "")
	v.SetDefault("read_limit", 4096)
	v.SetDefault("ping_period", "20s")
	v.SetDefault("session_secret", "change-me")
	v.SetDefault("auth.invalid_secret", "reject")
	v.SetDefault("relay.echo_to_sender", true)
	v.SetDefault("relay.on_backpressure", "none")
	v.SetDefault("relay.send_buffer", 256)
	v.SetDefault("relay.rate_limit", 0)
	v.SetDefault("relay.burst", 8)

	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Rooms) == 0 {
		return nil, ErrNoRooms
	}
	for _, r := range cfg.Rooms {
		if err := domain.RoomID(r.ID).Validate(); err != nil {
			return nil, fmt.Errorf("room %q: %w", r.ID, err)
		}
		if p := cfg.RoomPath(domain.RoomID(r.ID)); isReservedPath(p) {
			return nil, fmt.Errorf("room %q at %s: %w", r.ID, p, ErrReservedRoom)
		}
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Int("rooms", len(cfg.Rooms)).Msg("server config")
	return &cfg, nil
}

// LoadClient reads the client config. The file type follows the extension.
func LoadClient(path string) (*Client, error) {
	v := newViper(path)

	v.SetDefault("server_uri", "")
	v.SetDefault("room_id", "")
	v.SetDefault("auth.key", "")
	v.SetDefault("retry.delay", "5s")
	v.SetDefault("retry.max_attempts", 0)
	v.SetDefault("player.command", []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"})

	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ServerURI == "" {
		return nil, ErrMissingServer
	}
	if cfg.RoomID == "" {
		return nil, ErrMissingRoom
	}
	log.Info().Str("module", "config").Str("server", cfg.ServerURI).Str("room", cfg.RoomID).Int("sounds", len(cfg.Sounds)).Int("hotkeys", len(cfg.Hotkeys)).Msg("client config")
	return &cfg, nil
}
