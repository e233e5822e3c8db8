package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/service"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/metrics"
	"go.uber.org/zap"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HTTPServer struct {
	server  *http.Server
	router  *gin.Engine
	logger  *logger.Logger
	timeout time.Duration
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	courseSizeService *service.CourseSizeService,
	m *metrics.Metrics,
	db HealthChecker,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	skip := []string{"/health"}
	if m != nil && config.Metrics.Path != "" {
		skip = append(skip, config.Metrics.Path)
	}
	router.Use(logger.GinLogger(log, skip...))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status, database := http.StatusOK, "ok"
		if err := db.HealthCheck(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			status, database = http.StatusServiceUnavailable, "unreachable"
		}
		c.JSON(status, gin.H{
			"status":   http.StatusText(status),
			"database": database,
			"time":     time.Now().Format(time.RFC3339),
		})
	})

	if m != nil && config.Metrics.Path != "" {
		router.GET(config.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// API routes
	api := router.Group("/api/v1")
	courseSizeService.RegisterRoutes(api)

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.Addr(),
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		router:  router,
		logger:  log,
		timeout: config.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting at most the configured shutdown
// timeout for in-flight reports.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}
