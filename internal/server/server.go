package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	"github.com/providerpulse/providerpulse/internal/config"
	"github.com/providerpulse/providerpulse/internal/dispatch"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	"github.com/providerpulse/providerpulse/internal/scoring"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"github.com/providerpulse/providerpulse/internal/sweep"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			return
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	providerSvc providerdomain.Service
	catalogSvc  catalogdomain.Service
	pricingSvc  pricingdomain.Service
	probeSvc    probedomain.Service
	reviewSvc   reviewdomain.Service
	settingsSvc settingsdomain.Service
	engineSvc   *scoring.Engine
	dispatcher  dispatch.Dispatcher
	sweeper     *sweep.Executor
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	ProviderSvc providerdomain.Service
	CatalogSvc  catalogdomain.Service
	PricingSvc  pricingdomain.Service
	ProbeSvc    probedomain.Service
	ReviewSvc   reviewdomain.Service
	SettingsSvc settingsdomain.Service
	EngineSvc   *scoring.Engine
	Dispatcher  dispatch.Dispatcher
	Sweeper     *sweep.Executor
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		providerSvc: p.ProviderSvc,
		catalogSvc:  p.CatalogSvc,
		pricingSvc:  p.PricingSvc,
		probeSvc:    p.ProbeSvc,
		reviewSvc:   p.ReviewSvc,
		settingsSvc: p.SettingsSvc,
		engineSvc:   p.EngineSvc,
		dispatcher:  p.Dispatcher,
		sweeper:     p.Sweeper,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/providers", s.CreateProvider)
	v1.GET("/providers", s.ListProviders)
	v1.GET("/providers/:id", s.GetProvider)
	v1.PATCH("/providers/:id", s.UpdateProvider)
	v1.DELETE("/providers/:id", s.DeleteProvider)
	v1.GET("/providers/:id/uptime", s.GetProviderUptime)

	v1.POST("/models", s.CreateModel)
	v1.GET("/models", s.ListModels)
	v1.GET("/models/:id", s.GetModel)
	v1.PATCH("/models/:id", s.UpdateModel)

	v1.POST("/provider-models", s.CreateProviderModel)
	v1.GET("/provider-models", s.ListProviderModels)
	v1.GET("/provider-models/:id", s.GetProviderModel)
	v1.PATCH("/provider-models/:id/price", s.UpdateProviderModelPrice)

	v1.GET("/price-history", s.ListPriceHistory)
	v1.GET("/price-trends", s.GetPriceTrends)

	v1.POST("/probes", s.RecordProbe)
	v1.GET("/probes", s.ListProbes)
	v1.GET("/uptime", s.GetUptimeSummary)
	v1.GET("/latency", s.GetLatencySummary)

	v1.POST("/reviews", s.CreateReview)
	v1.GET("/reviews", s.ListReviews)
	v1.PATCH("/reviews/:id", s.UpdateReview)
	v1.DELETE("/reviews/:id", s.DeleteReview)

	v1.GET("/rankings", s.GetRankings)
	v1.GET("/compare", s.CompareProviders)

	v1.GET("/settings/scoring", s.GetScoringConfig)
	v1.PUT("/settings/scoring", s.SaveScoringConfig)
	v1.GET("/settings/scheduler", s.GetSchedulerSettings)
	v1.PUT("/settings/scheduler", s.SaveSchedulerSettings)

	v1.POST("/jobs/dispatch", s.DispatchSweep)
	v1.GET("/jobs", s.ListJobs)
	v1.POST("/jobs/:queue/:id/retry", s.RetryJob)
}
