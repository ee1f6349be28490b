package server

import (
	"time"

	clientdomain "github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/Origin-Inc/e-invoicing-backend/internal/dashboard"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/logger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/metrics"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/tracing"
	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type Params struct {
	fx.In

	Config       config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	Redis        *redis.Client `optional:"true"`
	HTTPMetrics  *metrics.HTTPMetrics
	ClientSvc    clientdomain.Service
	InvoiceSvc   invoicedomain.Service
	PaymentSvc   paymentdomain.Service
	DashboardSvc dashboard.Service
}

// Server owns the HTTP surface.
type Server struct {
	cfg          config.Config
	log          *zap.Logger
	db           *gorm.DB
	redis        *redis.Client
	httpMetrics  *metrics.HTTPMetrics
	clientSvc    clientdomain.Service
	invoiceSvc   invoicedomain.Service
	paymentSvc   paymentdomain.Service
	dashboardSvc dashboard.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Config,
		log:          p.Log.Named("server"),
		db:           p.DB,
		redis:        p.Redis,
		httpMetrics:  p.HTTPMetrics,
		clientSvc:    p.ClientSvc,
		invoiceSvc:   p.InvoiceSvc,
		paymentSvc:   p.PaymentSvc,
		dashboardSvc: p.DashboardSvc,
	}
}

// Router assembles the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tracing.GinMiddleware("einvoicing"))
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/", "/healthz", "/metrics"},
	}))
	r.Use(metrics.GinMiddleware(s.httpMetrics))
	r.Use(rateLimitMiddleware(s.newRateLimiter()))

	r.GET("/", s.Liveness)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		clients := v1.Group("/clients")
		{
			clients.POST("", s.CreateClient)
			clients.GET("", s.ListClients)
			clients.GET("/:id", s.GetClient)
			clients.PATCH("/:id", s.UpdateClient)
			clients.DELETE("/:id", s.DeleteClient)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("", s.CreateInvoice)
			invoices.GET("", s.ListInvoices)
			invoices.GET("/:id", s.GetInvoice)
			invoices.PATCH("/:id", s.UpdateInvoice)
			invoices.POST("/:id/send", s.SendInvoice)
			invoices.POST("/:id/cancel", s.CancelInvoice)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", s.CreatePayment)
			payments.GET("", s.ListPayments)
			payments.GET("/:id", s.GetPayment)
			payments.PATCH("/:id/status", s.UpdatePaymentStatus)
		}

		v1.GET("/dashboard/stats", s.DashboardStats)
	}

	return r
}

func (s *Server) newRateLimiter() rateLimiter {
	limit := s.cfg.RateLimit.Requests
	window := s.cfg.RateLimit.Window
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	if s.redis != nil {
		return newRedisRateLimiter(s.redis, limit, window)
	}
	return newMemoryRateLimiter(limit, window)
}
