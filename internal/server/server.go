// Package server exposes the gateway over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "financegateway/docs" // swagger docs
	"financegateway/internal/config"
	"financegateway/internal/finance"
	"financegateway/internal/metrics"
)

// Options holds the optional collaborators of a Server.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// MCPHandler is mounted on MCPPath when set.
	MCPHandler http.Handler
	MCPPath    string
	Debug      bool
}

// Server is the HTTP front of the gateway.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and the underlying http.Server.
func New(cfg config.ServerConfig, svc *finance.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: opts.Logger,
	}
	s.engine = s.setupRouter(svc, opts)
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRouter(svc *finance.Service, opts Options) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Recovery(opts.Logger))
	r.Use(RequestID())
	r.Use(Logging(opts.Logger))
	r.Use(Metrics(opts.Metrics))
	r.Use(CORS(s.cfg.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	h := &handlers{svc: svc}
	api := r.Group("/api/v1")
	{
		api.GET("/quote/:symbols", h.quotes)
		api.GET("/history/:symbols", h.history)
		api.GET("/search/:query", h.search)
		api.GET("/trending/:regions", h.trending)
		api.GET("/recommendations/:symbols", h.recommendations)
		api.GET("/insights/:symbols", h.insights)
		api.GET("/screener/:type", h.screener)
	}

	if opts.MCPHandler != nil {
		path := opts.MCPPath
		if path == "" {
			path = "/mcp"
		}
		mcp := gin.WrapH(opts.MCPHandler)
		r.GET(path, mcp)
		r.POST(path, mcp)
		r.DELETE(path, mcp)
	}

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
