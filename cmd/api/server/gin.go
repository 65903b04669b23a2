package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginrouter "pmblueprints/internal/adapter/gin/router"
	"pmblueprints/internal/config"
	redisclient "pmblueprints/pkg/redis"
	"pmblueprints/pkg/security"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handlers ginrouter.Handlers,
	tokens *security.TokenManager,
	redisClient *redisclient.Client,
	cfg *config.Config,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handlers, tokens, redisClient, cfg.RateLimit, l)

	addr := ":" + cfg.App.HTTPPort
	l.Info("REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
