package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/robobooks/internal/audit"
	auditdomain "github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/smallbiznis/robobooks/internal/customer"
	customerdomain "github.com/smallbiznis/robobooks/internal/customer/domain"
	"github.com/smallbiznis/robobooks/internal/observability"
	obsmiddleware "github.com/smallbiznis/robobooks/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/robobooks/internal/observability/metrics"
	obstracing "github.com/smallbiznis/robobooks/internal/observability/tracing"
	"github.com/smallbiznis/robobooks/internal/providers/pdf"
	"github.com/smallbiznis/robobooks/internal/quote"
	quotedomain "github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/savelock"
	"github.com/smallbiznis/robobooks/internal/settings"
	settingsdomain "github.com/smallbiznis/robobooks/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	savelock.Module,
	pdf.Module,
	audit.Module,
	customer.Module,
	settings.Module,
	quote.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
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
	quoteSvc    quotedomain.Service
	customerSvc customerdomain.Service
	settingsSvc settingsdomain.Service
	auditSvc    auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	QuoteSvc    quotedomain.Service
	CustomerSvc customerdomain.Service
	SettingsSvc settingsdomain.Service
	AuditSvc    auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		quoteSvc:    p.QuoteSvc,
		customerSvc: p.CustomerSvc,
		settingsSvc: p.SettingsSvc,
		auditSvc:    p.AuditSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(OrgContext())

	quotes := api.Group("/quotes")
	quotes.POST("/preview", s.PreviewQuote)
	quotes.POST("", s.CreateQuote)
	quotes.GET("", s.ListQuotes)
	quotes.GET("/:id", s.GetQuoteByID)
	quotes.PUT("/:id", s.UpdateQuote)
	quotes.POST("/:id/status", s.UpdateQuoteStatus)
	quotes.GET("/:id/pdf", s.RenderQuotePDF)

	customers := api.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomerByID)
	customers.PATCH("/:id", s.UpdateCustomer)

	settings := api.Group("/settings")
	settings.GET("/tax", s.GetTaxSettings)
	settings.PUT("/tax", s.UpsertTaxSettings)

	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
