package web

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corpus-prep/config"
	"corpus-prep/metrics"
	"corpus-prep/pipeline"
	"corpus-prep/web/handlers"
	"corpus-prep/web/middleware"
	"corpus-prep/web/services"
)

//go:embed guide.md
var guideMarkdown string

type Server struct {
	router   *gin.Engine
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	limiter  *middleware.ClientRateLimiter
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(p *pipeline.Pipeline, m *metrics.Metrics, logger *zap.Logger, config *config.Config) *Server {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Add logger to context
		c.Set("logger", logger)
		c.Next()
	})
	// multipart parts beyond this stay on disk instead of in memory
	router.MaxMultipartMemory = config.MaxUploadMB << 20

	server := &Server{
		router:   router,
		pipeline: p,
		metrics:  m,
		logger:   logger,
		config:   config,
		limiter: middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerMinute: config.RateLimitRequestsPerMin,
			BurstSize:         config.RateLimitBurstSize,
			CleanupInterval:   5 * time.Minute,
			IdleTimeout:       30 * time.Minute,
		}, logger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	corpusHandler := handlers.NewCorpusHandler(s.pipeline, services.NewUploadService(s.config.MaxUploadMB, s.logger), s.logger)
	guideHandler := handlers.NewGuideHandler(guideMarkdown)

	// Web routes
	s.router.GET("/", guideHandler.Index)
	s.router.GET("/health", corpusHandler.Health)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(s.limiter))
	{
		api.POST("/detect", corpusHandler.Detect)
		api.POST("/generate", corpusHandler.Generate)
		api.GET("/dictionaries/:kind", corpusHandler.GetDictionary)
		api.PUT("/dictionaries/:kind", corpusHandler.PutDictionary)
		api.DELETE("/dictionaries/:kind/:term", corpusHandler.DeleteDictionaryTerm)
		api.GET("/runs", corpusHandler.Runs)
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
	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.limiter.Stop()
		return err
	}

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
