package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/config"
	"github.com/vovakirdan/buzzer-server/internal/core"
)

// NewServer builds the HTTP server. socketio may be nil to leave the
// compatibility endpoint unmounted.
// /ws is served outside gin: gin's writer cannot be hijacked after the 101
// status is written.
func NewServer(hub *core.Hub, socketio stdhttp.Handler, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", NewRouter(hub, socketio, cfg, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers the REST, health and socket.io routes on a gin engine.
func NewRouter(hub *core.Hub, socketio stdhttp.Handler, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(ginMode(cfg.Mode))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	rooms := NewRoomHandlers(hub.Coordinator(), logger)
	api := router.Group("/api")
	api.GET("/stats", rooms.Stats)
	if cfg.AdminAPI {
		api.GET("/rooms", rooms.ListRooms)
		api.GET("/rooms/:id", rooms.GetRoom)
	}

	if socketio != nil {
		router.GET("/socket.io/*any", gin.WrapH(socketio))
		router.POST("/socket.io/*any", gin.WrapH(socketio))
	}

	return router
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

// corsMiddleware admits browser pages from the configured origin hosts, or
// from anywhere when none are configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}

	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return cors.New(corsCfg)
	}

	corsCfg.AllowWildcard = true
	corsCfg.AllowOrigins = make([]string, 0, 2*len(origins))
	for _, origin := range origins {
		if strings.Contains(origin, "://") {
			corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, origin)
			continue
		}
		corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, "http://"+origin, "https://"+origin)
	}
	return cors.New(corsCfg)
}
