package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Speaker/internal/adapters/signal"
	"github.com/dkeye/Speaker/internal/app"
	"github.com/dkeye/Speaker/internal/config"
	"github.com/dkeye/Speaker/internal/core"
	"github.com/dkeye/Speaker/internal/domain"
)

const clientTokenKey = "ct"

// ClientTokenMiddleware pins a stable client token to the cookie session so
// log lines from reconnects of the same client can be correlated.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Server, orch *app.Orchestrator, ctl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("SpeakerSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Str("base_path", cfg.BasePath).Msg("router setup")

	r.GET(config.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": orch.Registry.Count()})
	})

	api := r.Group(config.APIPrefix)
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Rooms.List())
	})
	api.GET("/rooms/:id/members", func(c *gin.Context) {
		room, ok := orch.Rooms.Get(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": app.ErrUnknownRoom.Error()})
			return
		}
		c.JSON(http.StatusOK, room.MembersSnapshot())
	})
	api.DELETE("/rooms/:id/members", func(c *gin.Context) {
		id := domain.RoomID(c.Param("id"))
		if _, ok := orch.Rooms.Get(id); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": app.ErrUnknownRoom.Error()})
			return
		}
		n := orch.EvictRoom(id)
		log.Info().Str("module", "adapters.http").Str("room", string(id)).Int("kicked", n).Msg("room evicted")
		c.JSON(http.StatusOK, gin.H{"kicked": n})
	})
	api.DELETE("/sessions/:sid", func(c *gin.Context) {
		sid := core.SessionID(c.Param("sid"))
		if !orch.KickBySID(sid) {
			c.JSON(http.StatusNotFound, gin.H{"error": app.ErrUnknownSession.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	// Rooms live directly under the base path, so the websocket endpoint is
	// whatever no other route claimed.
	r.NoRoute(func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.Debug().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Str("path", c.Request.URL.Path).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
