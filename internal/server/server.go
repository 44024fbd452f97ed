// Package server exposes the calculators, the material catalog and the
// order history over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/config"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/piwi3910/matcalc/internal/project"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Server. History may be nil, in which case quotes
// are never saved and the order routes answer 503.
type Options struct {
	Version      string
	Mode         string
	Catalog      model.Catalog
	CatalogPath  string // Persist catalog edits here when set
	Defaults     model.DefaultsConfig
	DefaultsPath string // Persist defaults edits here when set
	History      *project.OrderHistory
	RateLimit    config.RateLimitConfig
}

type Server struct {
	logger       *zap.Logger
	version      string
	mode         string
	catalog      *snapshot[model.Catalog]
	catalogPath  string
	defaults     *snapshot[model.DefaultsConfig]
	defaultsPath string
	history      *project.OrderHistory
	limiter      *IPRateLimiter
}

func New(logger *zap.Logger, opts Options) *Server {
	s := &Server{
		logger:       logger,
		version:      opts.Version,
		mode:         opts.Mode,
		catalog:      newSnapshot(opts.Catalog.Clone()),
		catalogPath:  opts.CatalogPath,
		defaults:     newSnapshot(opts.Defaults),
		defaultsPath: opts.DefaultsPath,
		history:      opts.History,
	}
	if opts.RateLimit.RPS > 0 {
		burst := opts.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = NewIPRateLimiter(rate.Limit(opts.RateLimit.RPS), burst)
	}
	return s
}

// Router builds the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.mode != "" {
		gin.SetMode(s.mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(s.logger))
	router.Use(CORS())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	if s.limiter != nil {
		router.Use(s.limiter.Middleware())
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.health)

		calc := v1.Group("/calculate")
		calc.POST("/rod", s.calculateRod)
		calc.POST("/plate", s.calculatePlate)
		calc.POST("/scrap", s.calculateScrap)
		calc.POST("/cutplan", s.cutPlan)
		calc.POST("/compare", s.compare)

		v1.POST("/validate", s.validate)

		quote := v1.Group("/quote")
		quote.POST("/rod", s.quoteRod)
		quote.POST("/plate", s.quotePlate)

		materials := v1.Group("/materials")
		materials.GET("", s.listMaterials)
		materials.GET("/:key", s.getMaterial)
		materials.PUT("/:key", s.putMaterial)

		v1.GET("/defaults", s.getDefaults)
		v1.PUT("/defaults", s.putDefaults)

		orders := v1.Group("/orders")
		orders.Use(s.requireHistory())
		orders.GET("", s.listOrders)
		orders.DELETE("", s.clearOrders)
		orders.GET("/export.json", s.exportOrdersJSON)
		orders.GET("/export.xlsx", s.exportOrdersXLSX)
		orders.GET("/:id", s.getOrder)
		orders.DELETE("/:id", s.deleteOrder)
		orders.GET("/:id/quote.pdf", s.orderQuotePDF)
		orders.GET("/:id/tags.pdf", s.orderTagsPDF)
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if s.limiter != nil {
		go s.limiter.RunSweeper(ctx, limiterSweepEvery, limiterIdle)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server exited")
	return nil
}

func (s *Server) requireHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.history == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				StatusCode:  http.StatusServiceUnavailable,
				Message:     "Order history is not configured",
				Kind:        "unavailable",
				Suggestions: []string{},
			})
			return
		}
		c.Next()
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

func (s *Server) health(c *gin.Context) {
	store := "none"
	if s.history != nil {
		store = s.history.Store().Name()
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Version: s.version, Store: store})
}
