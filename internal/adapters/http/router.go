package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/origin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthMessage = "Get request received on server"

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) (*gin.Engine, error) {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	allow, err := origin.NewPolicy(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  allow.Allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	ctrl := signal.NewSignalWSController(o,
		signal.NewEventRateLimiter(cfg.RateLimit, cfg.RateBurst),
		signal.Options{
			ReadLimit:   cfg.ReadLimit,
			PingPeriod:  cfg.PingPeriod,
			WriteWait:   cfg.WriteWait,
			SendBuffer:  cfg.SendBuffer,
			CheckOrigin: allow.CheckRequest,
		})

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, healthMessage)
	})
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})
	api.GET("/rooms/:id/members", func(c *gin.Context) {
		room := domain.RoomID(c.Param("id"))
		members := o.Rooms.MembersSnapshot(room)
		if len(members) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, struct {
			Room    domain.RoomID    `json:"room"`
			Members []core.MemberDTO `json:"members"`
		}{room, members})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Strs("origins", cfg.AllowedOrigins).Msg("router setup")
	return r, nil
}
