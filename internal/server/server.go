// Package server exposes the audit service over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/propworks/rentaudit/internal/audit"
	"github.com/propworks/rentaudit/internal/config"
	"github.com/propworks/rentaudit/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with recovery, request logging, the error
// envelope middleware, and the operational endpoints.
func NewEngine(cfg config.Config, log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

// Server holds the route handlers.
type Server struct {
	engine *gin.Engine
	cfg    config.Config
	svc    *audit.Service
	log    *zap.Logger
}

// NewServer registers all API routes on the engine.
func NewServer(engine *gin.Engine, cfg config.Config, svc *audit.Service, log *zap.Logger) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		svc:    svc,
		log:    log.Named("server"),
	}

	v1 := engine.Group("/v1")
	v1.POST("/imports", s.ImportDocument)
	v1.POST("/detections", s.RunDetection)
	v1.POST("/reset", s.Reset)

	v1.GET("/findings", s.ListFindings)
	v1.GET("/findings/summary", s.FindingsSummary)
	v1.POST("/findings/:id/override", s.OverrideFinding)

	v1.GET("/aggregates/monthly", s.MonthlyAggregates)
	v1.GET("/aggregates/units", s.UnitAggregates)
	v1.GET("/revenue/trend", s.RevenueTrend)

	v1.GET("/audit-trail", s.AuditTrail)

	return s
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
