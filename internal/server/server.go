package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/washworks/fleetwash/internal/audit"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	"github.com/washworks/fleetwash/internal/billingline"
	billingdomain "github.com/washworks/fleetwash/internal/billingline/domain"
	"github.com/washworks/fleetwash/internal/catalog"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/config"
	"github.com/washworks/fleetwash/internal/invoicing"
	"github.com/washworks/fleetwash/internal/observability"
	obsmiddleware "github.com/washworks/fleetwash/internal/observability/logger"
	obsmetrics "github.com/washworks/fleetwash/internal/observability/metrics"
	obstracing "github.com/washworks/fleetwash/internal/observability/tracing"
	"github.com/washworks/fleetwash/internal/partner"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"github.com/washworks/fleetwash/internal/providers"
	"github.com/washworks/fleetwash/internal/ratelimit"
	"github.com/washworks/fleetwash/internal/usage"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	"github.com/washworks/fleetwash/internal/washsession"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	audit.Module,
	partner.Module,
	catalog.Module,
	usage.Module,
	washsession.Module,
	billingline.Module,
	providers.Module,
	invoicing.Module,
	ratelimit.Module,
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
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
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sessionSvc     sessiondomain.Service
	partnerSvc     partnerdomain.Service
	catalogSvc     catalogdomain.Service
	auditSvc       auditdomain.Service
	usageSvc       usagedomain.Service
	billingLineSvc billingdomain.Service
	invoicingSvc   invoicing.Service
	sessionLimiter *ratelimit.SessionCreateLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	SessionSvc     sessiondomain.Service
	PartnerSvc     partnerdomain.Service
	CatalogSvc     catalogdomain.Service
	AuditSvc       auditdomain.Service
	UsageSvc       usagedomain.Service
	BillingLineSvc billingdomain.Service
	InvoicingSvc   invoicing.Service
	SessionLimiter *ratelimit.SessionCreateLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessionSvc:     p.SessionSvc,
		partnerSvc:     p.PartnerSvc,
		catalogSvc:     p.CatalogSvc,
		auditSvc:       p.AuditSvc,
		usageSvc:       p.UsageSvc,
		billingLineSvc: p.BillingLineSvc,
		invoicingSvc:   p.InvoicingSvc,
		sessionLimiter: p.SessionLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", s.NetworkContext(), s.ActorContext())

	sessions := v1.Group("/sessions")
	sessions.POST("", s.CreateSession)
	sessions.GET("", s.ListSessions)
	sessions.GET("/:id", s.GetSession)
	sessions.POST("/:id/authorize", s.AuthorizeSession)
	sessions.POST("/:id/start", s.StartSession)
	sessions.POST("/:id/complete", s.CompleteSession)
	sessions.POST("/:id/reject", s.RejectSession)
	sessions.POST("/:id/lock", s.LockSession)
	sessions.GET("/:id/billing-lines", s.GetBillingLines)

	partners := v1.Group("/partners")
	partners.POST("", s.CreatePartner)
	partners.GET("", s.ListPartners)
	partners.GET("/:id", s.GetPartner)
	partners.GET("/:id/usage", s.GetPartnerUsage)

	locations := v1.Group("/locations")
	locations.PUT("/:location_id/prices", s.UpsertLocationPrice)
	locations.GET("/:location_id/prices", s.ListLocationPrices)

	v1.POST("/invoicing/runs", s.IssueInvoices)

	v1.GET("/audit-logs", s.ListAuditLogs)
}
