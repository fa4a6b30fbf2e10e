package server

import (
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/techsaints/landing/internal/metrics"
	"github.com/techsaints/landing/internal/server/middleware"
	"github.com/techsaints/landing/pkg/env"
	"github.com/techsaints/landing/pkg/rate_limiter"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultGracefulShutdownTimeout = 10 * time.Second

	SubscribePath      = "/api/subscribe"
	HealthPath         = "/health"
	defaultMetricsPath = "/metrics"
)

type Server struct {
	port                  string
	readTimeoutInSeconds  time.Duration
	writeTimeoutInSeconds time.Duration
	maxHeaderBytes        int
	handler               *gin.Engine
	servicer              rate_limiter.Servicer
	subscriber            subscribeHandlerServicer
	metrics               *metrics.Metrics
	metricsPath           string
	disableRateLimiter    bool
}

type Option func(s *Server)

func WithDisableRateLimiter(value bool) Option {
	return func(s *Server) {
		s.disableRateLimiter = value
	}
}

// WithMetrics exposes m on path and records request metrics into it.
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		if path != "" {
			s.metricsPath = path
		}
	}
}

func WithAddr(addr string) Option {
	return func(s *Server) {
		s.port = addr
	}
}

func NewServer(servicer rate_limiter.Servicer, subscriber subscribeHandlerServicer, opts ...Option) *Server {
	envObj := env.GetEnv()
	s := &Server{
		port:                  envObj.ServerPort,
		readTimeoutInSeconds:  envObj.ServerReadTimeoutInSecond,
		writeTimeoutInSeconds: envObj.ServerWriteTimeoutInSecond,
		maxHeaderBytes:        envObj.ServerMaxHeaderBytes,
		handler:               gin.New(),
		servicer:              servicer,
		subscriber:            subscriber,
		metricsPath:           defaultMetricsPath,
		disableRateLimiter:    false,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.handler.HandleMethodNotAllowed = true

	s.handler.Use(middleware.QueueTimeMiddleware)
	s.handler.Use(middleware.RequestIDMiddleware)
	s.handler.Use(middleware.RequestLoggerMiddleware)
	s.handler.Use(middleware.RecoveryMiddleware)
	if s.metrics != nil {
		s.handler.Use(middleware.MetricsMiddleware(s.metrics))
	}

	subscribeChain := []gin.HandlerFunc{}
	if s.disableRateLimiter == false {
		subscribeChain = append(subscribeChain, middleware.RateLimitSubscriptionMiddleware(s.servicer, s.metrics))
	}
	subscribeChain = append(subscribeChain, SubscribeHandler(s.subscriber, s.metrics))

	s.handler.POST(SubscribePath, subscribeChain...)
	s.handler.GET(HealthPath, healthHandler)
	if s.metrics != nil {
		s.handler.GET(s.metricsPath, gin.WrapH(s.metrics.Handler()))
	}

	s.handler.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	s.handler.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.port,
		Handler:        s.handler,
		ReadTimeout:    s.readTimeoutInSeconds,
		WriteTimeout:   s.writeTimeoutInSeconds,
		MaxHeaderBytes: s.maxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", s.port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultGracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Server exited gracefully")
	return nil
}
