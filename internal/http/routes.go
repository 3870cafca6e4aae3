package http

import (
	"time"

	"battleship/internal/config"
	"battleship/internal/http/handlers"
	"battleship/internal/http/middleware"
	"battleship/internal/service"
	"battleship/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps are the long-lived objects the routes are built on. Redis is
// optional.
type Deps struct {
	Games  *service.GameService
	Hub    *ws.Hub
	Redis  *redis.Client
	Config *config.Config
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Games, d.Hub, d.Config.AllowedOrigin)
	healthHandler := handlers.NewHealthHandler(d.Games, d.Config.AppVersion)

	r.Use(middleware.RequestMetrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Push updates over websocket; the token comes in the query string.
	r.GET("/ws", h.WS)

	apiRateWindow := time.Duration(d.Config.APIRateWindow) * time.Second
	var apiRL gin.HandlerFunc
	if d.Redis != nil {
		apiRL = middleware.RedisRateLimit(d.Redis, d.Config.APIRateLimit, apiRateWindow)
	} else {
		apiRL = middleware.SimpleRateLimit(d.Config.APIRateLimit, apiRateWindow)
	}
	// per player, shared across instances when redis is available
	playerRL := middleware.PlayerRateLimit(d.Redis, d.Config.APIRateLimit, apiRateWindow)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)

	games := v1.Group("/games")
	{
		games.POST("", middleware.OptionalJWT(), h.CreateGame)
		games.POST("/find-match", middleware.OptionalJWT(), h.FindMatch)
		games.GET("/open", h.OpenGames)

		games.POST("/:id/join", middleware.OptionalJWT(), h.JoinGame)
		games.POST("/:id/place-ship", middleware.JWT(), playerRL, h.PlaceShip)
		games.POST("/:id/attack", middleware.JWT(), playerRL, h.Attack)
		games.POST("/:id/rematch", middleware.JWT(), h.Rematch)

		games.GET("/:id", middleware.JWT(), h.GetGame)
		games.GET("/:id/poll", middleware.JWT(), h.Poll)
		games.GET("/:id/events", middleware.JWT(), h.Events)
	}

	v1.GET("/me/games", middleware.JWT(), h.MyGames)
}
