package http

import (
	"context"
	nethttp "net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zmagdon/watchparty/internal/adapters/ws"
	"github.com/zmagdon/watchparty/internal/config"
	"github.com/zmagdon/watchparty/internal/room"
)

// Room ids are opaque: alphanumeric, dash, underscore, 1-64 chars.
var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func SetupRouter(ctx context.Context, cfg *config.Config, rooms *room.Manager) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctl := &ws.Controller{
		Rooms:        rooms,
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		WriteTimeout: cfg.WriteTimeout,
	}

	r.GET("/room/:id", func(c *gin.Context) {
		if !roomIDPattern.MatchString(c.Param("id")) {
			c.Status(nethttp.StatusNotFound)
			return
		}
		if !websocket.IsWebSocketUpgrade(c.Request) {
			c.Status(nethttp.StatusUpgradeRequired)
			return
		}
		ctl.HandleRoom(ctx, c)
	})

	r.GET("/api/rooms", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, rooms.List())
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.String(nethttp.StatusOK, "ok")
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
