package http

import (
	stdhttp "net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anonchat/anonchat-server/internal/config"
	"github.com/anonchat/anonchat-server/internal/core"
)

// NewServer builds the HTTP server: REST companion endpoints, health
// probes and the WebSocket upgrade route.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger), cors.New(corsConfig(cfg)))

	router.GET("/", rootHandler)
	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, logger)
	api := router.Group("/api")
	api.POST("/create-room", rooms.CreateRoom)
	api.GET("/room/:room", rooms.RoomInfo)

	ws := NewWSHandler(hub, cfg, logger)
	router.GET("/ws/:room", ws.Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowedOrigins
	return c
}

func rootHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{
		"message": "Anonymous Chat API is running",
		"version": "1.0.0",
		"status":  "healthy",
	})
}

func healthHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "anonchat-server",
		"websocket_support": true,
	})
}
