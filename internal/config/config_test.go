package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Speaker/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const serverYAML = `
port: 9000
rooms:
  - id: Lobby
    secrets: [s3cr3t, backup]
  - id: attic
    secrets: [dusty]
relay:
  echo_to_sender: false
`

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer(writeFile(t, "server.yaml", serverYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.Handshake.Timeout)
	assert.Equal(t, 20*time.Second, cfg.PingPeriod)
	assert.Equal(t, "reject", cfg.Auth.InvalidSecret)
	assert.False(t, cfg.Relay.EchoToSender)
	assert.Equal(t, 256, cfg.Relay.SendBuffer)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Log.MaxAge)
	assert.Equal(t, 100, cfg.Log.MaxSize)
	assert.True(t, cfg.Log.Daily)

	// room ids are list values, so their case survives
	assert.Equal(t, []domain.Room{
		{ID: "Lobby", Secrets: []string{"s3cr3t", "backup"}},
		{ID: "attic", Secrets: []string{"dusty"}},
	}, cfg.DomainRooms())
}

func TestLoadServerEnvOverride(t *testing.T) {
	t.Setenv("SPEAKER_PORT", "9191")
	t.Setenv("SPEAKER_HANDSHAKE_TIMEOUT", "2s")

	cfg, err := LoadServer(writeFile(t, "server.yaml", serverYAML))
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Handshake.Timeout)
}

func TestLoadServerRequiresRooms(t *testing.T) {
	_, err := LoadServer(writeFile(t, "server.yaml", "port: 8080\n"))
	assert.ErrorIs(t, err, ErrNoRooms)

	_, err = LoadServer(writeFile(t, "server.yaml", "rooms:\n  - id: \"\"\n"))
	assert.ErrorIs(t, err, domain.ErrRoomIDEmpty)
}

func TestLoadServerMissingFile(t *testing.T) {
	_, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

const clientJSON = `{
  "server_uri": "ws://localhost:9000",
  "room_id": "Lobby",
  "auth": {"key": "s3cr3t"},
  "sounds": [{"token": "boo", "file": "sounds/boo.wav"}],
  "hotkeys": [{"name": "scare", "keys": "ctrl+shift+b", "sound": "sounds/boo.wav"}]
}`

func TestLoadClient(t *testing.T) {
	cfg, err := LoadClient(writeFile(t, "client.json", clientJSON))
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:9000", cfg.ServerURI)
	assert.Equal(t, "Lobby", cfg.RoomID)
	assert.Equal(t, "s3cr3t", cfg.Auth.Key)
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay)
	assert.Zero(t, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Handshake.Timeout)
	assert.Equal(t, "ffplay", cfg.Player.Command[0])
	assert.Equal(t, []domain.Sound{{Token: "boo", File: "sounds/boo.wav"}}, cfg.DomainSounds())
	require.Len(t, cfg.Hotkeys, 1)
	assert.Equal(t, "ctrl+shift+b", cfg.Hotkeys[0].Keys)
}

func TestLoadClientEnvSecret(t *testing.T) {
	t.Setenv("SPEAKER_AUTH_KEY", "from-env")
	cfg, err := LoadClient(writeFile(t, "client.json", clientJSON))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Key)
}

func TestLoadClientRequiresServerAndRoom(t *testing.T) {
	_, err := LoadClient(writeFile(t, "client.json", `{"room_id": "lobby"}`))
	assert.ErrorIs(t, err, ErrMissingServer)

	_, err = LoadClient(writeFile(t, "client.json", `{"server_uri": "ws://x"}`))
	assert.ErrorIs(t, err, ErrMissingRoom)
}

func TestLoadServerRejectsReservedRooms(t *testing.T) {
	for _, tc := range []struct {
		name, body string
	}{
		{"health", "rooms:\n  - id: healthz\n"},
		{"api", "rooms:\n  - id: api\n"},
		{"api subpath", "rooms:\n  - id: api/rooms\n"},
		{"base path under api", "base_path: /api\nrooms:\n  - id: lobby\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadServer(writeFile(t, "server.yaml", tc.body))
			assert.ErrorIs(t, err, ErrReservedRoom)
		})
	}
}

func TestLoadServerAllowsReservedNamesUnderBasePath(t *testing.T) {
	cfg, err := LoadServer(writeFile(t, "server.yaml", "base_path: /rooms/\nrooms:\n  - id: healthz\n  - id: api\n"))
	require.NoError(t, err)
	assert.Equal(t, "/rooms/healthz", cfg.RoomPath("healthz"))
}
