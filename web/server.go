package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"techsupport-agent/config"
	"techsupport-agent/metrics"
	"techsupport-agent/web/handlers"
	"techsupport-agent/web/middleware"
	"techsupport-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router   *gin.Engine
	ask      *services.AskService
	limiter  *middleware.ClientRateLimiter
	recorder *metrics.Recorder
	logger   *zap.Logger
	config   *config.Config
}

// NewServer builds the router. recorder may be nil to disable /metrics.
func NewServer(ask *services.AskService, recorder *metrics.Recorder, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware(logger))
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})

	var onReject func()
	if recorder != nil {
		onReject = recorder.RateLimited
	}
	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimitRequestsPerMin,
		BurstSize:         cfg.RateLimitBurstSize,
	}, logger, onReject)

	server := &Server{
		router:   router,
		ask:      ask,
		limiter:  limiter,
		recorder: recorder,
		logger:   logger,
		config:   cfg,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	askHandler := handlers.NewAskHandler(s.ask, s.logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(s.ask.Engine())
	limited := middleware.RateLimitMiddleware(s.limiter)

	s.router.GET("/healthz", knowledgeHandler.Health)
	s.router.POST("/ask", limited, askHandler.AskForm)

	api := s.router.Group("/api")
	api.POST("/ask", limited, askHandler.Ask)
	api.GET("/history", askHandler.History)
	api.GET("/knowledge", knowledgeHandler.Stats)

	if s.recorder != nil {
		s.router.GET("/metrics", gin.WrapH(s.recorder.Handler()))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.limiter.Stop()
		return err
	}

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
