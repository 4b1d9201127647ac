package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tractionlens/internal/classification"
	classificationdomain "github.com/smallbiznis/tractionlens/internal/classification/domain"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/diagnostic"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	"github.com/smallbiznis/tractionlens/internal/metric"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	"github.com/smallbiznis/tractionlens/internal/observability"
	obsmiddleware "github.com/smallbiznis/tractionlens/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tractionlens/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tractionlens/internal/observability/tracing"
	"github.com/smallbiznis/tractionlens/internal/providers"
	"github.com/smallbiznis/tractionlens/internal/ratelimit"
	"github.com/smallbiznis/tractionlens/internal/reference"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/internal/report"
	reportdomain "github.com/smallbiznis/tractionlens/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	reference.Module,
	classification.Module,
	metric.Module,
	diagnostic.Module,
	providers.Module,
	report.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
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
	if obsCfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
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
	engine            *gin.Engine
	cfg               config.Config
	refrepo           referencedomain.Repository
	classificationSvc classificationdomain.Service
	metricSvc         metricdomain.Service
	diagnosticSvc     diagnosticdomain.Service
	reportSvc         reportdomain.Service
	exportLimiter     *ratelimit.ExportLimiter
	sessions          *sessionCookies
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	Refrepo           referencedomain.Repository
	ClassificationSvc classificationdomain.Service
	MetricSvc         metricdomain.Service
	DiagnosticSvc     diagnosticdomain.Service
	ReportSvc         reportdomain.Service
	ExportLimiter     *ratelimit.ExportLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		refrepo:           p.Refrepo,
		classificationSvc: p.ClassificationSvc,
		metricSvc:         p.MetricSvc,
		diagnosticSvc:     p.DiagnosticSvc,
		reportSvc:         p.ReportSvc,
		exportLimiter:     p.ExportLimiter,
		sessions:          newSessionCookies(p.Cfg),
	}

	svc.registerAPIRoutes()
	svc.registerDiagnosticRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/saas-types", s.ListSaaSTypes)
	api.GET("/orientations", s.ListOrientations)
	api.GET("/industries", s.ListIndustries)
	api.GET("/growth-stages", s.ListGrowthStages)
	api.GET("/growth-stages/resolve", s.ResolveGrowthStage)
	api.GET("/pillars", s.ListPillars)
	api.GET("/metrics", s.ListMetrics)
}

func (s *Server) registerDiagnosticRoutes() {
	diag := s.engine.Group("/api/diagnostic")

	diag.POST("/sessions", s.StartDiagnostic)

	session := diag.Group("", s.DiagnosticSessionRequired())
	{
		session.GET("", s.GetDiagnostic)
		session.DELETE("", s.ResetDiagnostic)
		session.PUT("/profile", s.SubmitProfile)
		session.POST("/back", s.BackDiagnostic)

		session.GET("/steps/:step", s.VisitStep)
		session.PUT("/steps/:step/values", s.UpdateStepValues)
		session.POST("/steps/:step/complete", s.CompleteStep)

		session.GET("/report", s.GetReport)
		session.GET("/report.md", s.ExportRateLimit(reportdomain.FormatMarkdown), s.ExportReport(reportdomain.FormatMarkdown))
		session.GET("/report.html", s.ExportRateLimit(reportdomain.FormatHTML), s.ExportReport(reportdomain.FormatHTML))
		session.GET("/report.pdf", s.ExportRateLimit(reportdomain.FormatPDF), s.ExportReport(reportdomain.FormatPDF))
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
