package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/marketcall/signaling/internal/adapters/signal"
	"github.com/marketcall/signaling/internal/app"
	"github.com/marketcall/signaling/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives each browser a stable token, used for
// upgrade rate limiting and log correlation. It is not an identity:
// signaling events are accepted at face value.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, dispatcher *app.Dispatcher) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SignalSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Signaling Server OK")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	limiter := NewUpgradeLimiter(cfg.HandshakeLimit, cfg.HandshakeWindow)
	ctrl := signal.NewController(dispatcher, cfg)

	api := r.Group("/api")

	api.GET("/stats", func(c *gin.Context) {
		users, calls, rooms := dispatcher.Stats()
		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"calls": calls,
			"rooms": rooms,
		})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		token := c.GetString("client_token")
		if !limiter.Allow(token) {
			log.Warn().Str("module", "adapters.http").Str("token", token).Msg("upgrade rate limited")
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
