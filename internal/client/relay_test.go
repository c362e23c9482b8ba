package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	router "github.com/dkeye/Speaker/internal/adapters/http"
	"github.com/dkeye/Speaker/internal/adapters/signal"
	"github.com/dkeye/Speaker/internal/app"
	"github.com/dkeye/Speaker/internal/codec"
	"github.com/dkeye/Speaker/internal/config"
	"github.com/dkeye/Speaker/internal/core"
	"github.com/dkeye/Speaker/internal/domain"
)

type relayServer struct {
	*httptest.Server
	orch *app.Orchestrator
}

func newRelayServer(t *testing.T, pingPeriod time.Duration) *relayServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Server{
		Mode:          "test",
		SessionSecret: "test-secret",
		Rooms:         []config.RoomConfig{{ID: "lobby", Secrets: []string{"s3cr3t"}}},
		Relay:         config.RelayConfig{EchoToSender: true, SendBuffer: 16},
	}
	rooms := cfg.DomainRooms()
	orch := &app.Orchestrator{
		Registry:     app.NewRegistry(),
		Rooms:        core.NewRoomManager(rooms),
		Policy:       app.SimplePolicy{},
		EchoToSender: true,
	}
	ctl := signal.NewSignalWSController(orch, app.NewAuthorizer(rooms, app.RejectInvalidSecret), nil, signal.Options{
		HandshakeTimeout: time.Second,
		PingPeriod:       pingPeriod,
		SendBuffer:       16,
	})

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, orch, ctl))
	t.Cleanup(func() {
		cancel()
		orch.Registry.CancelAll()
		srv.Close()
	})
	return &relayServer{Server: srv, orch: orch}
}

func (rs *relayServer) lobby(t *testing.T) core.RoomService {
	t.Helper()
	room, ok := rs.orch.Rooms.Get("lobby")
	require.True(t, ok)
	return room
}

func (rs *relayServer) waitMembers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return rs.lobby(t).MemberCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func soundCodec(t *testing.T, sounds ...domain.Sound) *codec.Codec {
	t.Helper()
	c, err := codec.New(sounds)
	require.NoError(t, err)
	return c
}

// joinLobby connects a session and runs it until the test ends.
func joinLobby(t *testing.T, rs *relayServer, c *codec.Codec, p Player) (*Session, <-chan error) {
	t.Helper()
	s := New(Options{
		ServerURI:        "ws" + strings.TrimPrefix(rs.URL, "http"),
		Room:             "lobby",
		Key:              "s3cr3t",
		HandshakeTimeout: time.Second,
	}, c, p)
	require.NoError(t, s.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, done
}

func recordPlays(played chan<- string) func(context.Context, string) error {
	return func(_ context.Context, path string) error {
		played <- path
		return nil
	}
}

func waitPlayed(t *testing.T, played <-chan string, want string) {
	t.Helper()
	select {
	case got := <-played:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("%s was not played", want)
	}
}

func TestTokensRelayBetweenClientsInOrder(t *testing.T) {
	rs := newRelayServer(t, 0)
	sounds := soundCodec(t,
		domain.Sound{Token: "boo", File: "/sounds/boo.wav"},
		domain.Sound{Token: "horn", File: "/sounds/horn.wav"},
		domain.Sound{Token: "bell", File: "/sounds/bell.wav"},
	)

	ctrl := gomock.NewController(t)
	senderPlayer := NewMockPlayer(ctrl)
	senderPlayer.EXPECT().Play(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	played := make(chan string, 8)
	listenerPlayer := NewMockPlayer(ctrl)
	gomock.InOrder(
		listenerPlayer.EXPECT().Play(gomock.Any(), "/sounds/boo.wav").DoAndReturn(recordPlays(played)),
		listenerPlayer.EXPECT().Play(gomock.Any(), "/sounds/horn.wav").DoAndReturn(recordPlays(played)),
		listenerPlayer.EXPECT().Play(gomock.Any(), "/sounds/bell.wav").DoAndReturn(recordPlays(played)),
	)

	a, _ := joinLobby(t, rs, sounds, senderPlayer)
	joinLobby(t, rs, sounds, listenerPlayer)
	rs.waitMembers(t, 2)

	for _, tok := range []domain.Token{"boo", "horn", "bell"} {
		a.Enqueue(tok)
		file, _ := sounds.File(tok)
		waitPlayed(t, played, file)
	}
}

func TestUnknownTokenKeepsClientInRoom(t *testing.T) {
	const ping = 100 * time.Millisecond
	rs := newRelayServer(t, ping)

	ctrl := gomock.NewController(t)
	// muted after the unknown token: any call fails the test
	mutedPlayer := NewMockPlayer(ctrl)

	played := make(chan string, 4)
	peerPlayer := NewMockPlayer(ctrl)
	gomock.InOrder(
		peerPlayer.EXPECT().Play(gomock.Any(), "/sounds/kazoo.wav").DoAndReturn(recordPlays(played)),
		peerPlayer.EXPECT().Play(gomock.Any(), "/sounds/horn.wav").DoAndReturn(recordPlays(played)),
	)

	a, aDone := joinLobby(t, rs, soundCodec(t, domain.Sound{Token: "horn", File: "/sounds/horn.wav"}), mutedPlayer)
	joinLobby(t, rs, soundCodec(t,
		domain.Sound{Token: "kazoo", File: "/sounds/kazoo.wav"},
		domain.Sound{Token: "horn", File: "/sounds/horn.wav"},
	), peerPlayer)
	rs.waitMembers(t, 2)

	a.Enqueue("kazoo")
	waitPlayed(t, played, "/sounds/kazoo.wav")

	// several ping periods: a client that stopped reading misses its pongs
	time.Sleep(6 * ping)
	require.Equal(t, 2, rs.lobby(t).MemberCount())
	select {
	case err := <-aDone:
		t.Fatalf("run ended: %v", err)
	default:
	}

	a.Enqueue("horn")
	waitPlayed(t, played, "/sounds/horn.wav")
}

func TestReconnectKeepsClientToken(t *testing.T) {
	rs := newRelayServer(t, 0)
	s := New(Options{
		ServerURI:        "ws" + strings.TrimPrefix(rs.URL, "http"),
		Room:             "lobby",
		Key:              "s3cr3t",
		HandshakeTimeout: time.Second,
	}, testCodec(t), nil)

	var tokens []string
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Connect(context.Background()))
		rs.waitMembers(t, 1)
		members := rs.lobby(t).MembersSnapshot()
		require.Len(t, members, 1)
		tokens = append(tokens, members[0].ClientToken)

		require.NoError(t, s.Close())
		rs.waitMembers(t, 0)
	}
	require.NotEmpty(t, tokens[0])
	assert.Equal(t, tokens[0], tokens[1])
}
