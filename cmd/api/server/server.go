package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	ginrouter "pmblueprints/internal/adapter/gin/router"
	"pmblueprints/internal/config"
	redisclient "pmblueprints/pkg/redis"
	"pmblueprints/pkg/security"
)

// Server struct holds the HTTP server and its dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	handlers ginrouter.Handlers,
	tokens *security.TokenManager,
	redisClient *redisclient.Client,
) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(handlers, tokens, redisClient, cfg, l),
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
