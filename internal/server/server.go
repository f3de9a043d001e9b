package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/entitle/internal/account"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
	"github.com/smallbiznis/entitle/internal/apikey"
	apikeydomain "github.com/smallbiznis/entitle/internal/apikey/domain"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/customer"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	"github.com/smallbiznis/entitle/internal/identity"
	obsmetrics "github.com/smallbiznis/entitle/internal/observability/metrics"
	"github.com/smallbiznis/entitle/internal/plan"
	plandomain "github.com/smallbiznis/entitle/internal/plan/domain"
	"github.com/smallbiznis/entitle/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/entitle/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	identity.Module,
	account.Module,
	apikey.Module,
	customer.Module,
	plan.Module,
	subscription.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
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
	engine   *gin.Engine
	cfg      config.Config
	resolver *identity.Resolver

	accountSvc      accountdomain.Service
	apiKeySvc       apikeydomain.Service
	customerSvc     customerdomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Resolver *identity.Resolver

	AccountSvc      accountdomain.Service
	APIKeySvc       apikeydomain.Service
	CustomerSvc     customerdomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		resolver: p.Resolver,

		accountSvc:      p.AccountSvc,
		apiKeySvc:       p.APIKeySvc,
		customerSvc:     p.CustomerSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerSDKRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/admin/login", s.AdminLogin)
	auth.POST("/login", s.CustomerLogin)
	auth.POST("/signup", s.Signup)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.BearerAuthRequired(), s.RequireCustomer())

	api.GET("/plans", s.ListPlans)
	api.GET("/subscription", s.GetCurrentSubscription)
	api.GET("/subscriptions", s.ListSubscriptionHistory)
	api.POST("/subscriptions", s.RequestSubscription)
	api.POST("/subscriptions/:id/deactivate", s.DeactivateSubscription)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.BearerAuthRequired(), s.RequireAdmin())

	admin.GET("/dashboard", s.Dashboard)

	admin.GET("/customers", s.ListCustomers)
	admin.POST("/customers", s.CreateCustomer)
	admin.GET("/customers/:id", s.GetCustomer)
	admin.PATCH("/customers/:id", s.UpdateCustomer)
	admin.DELETE("/customers/:id", s.DeactivateCustomer)

	admin.GET("/plans", s.AdminListPlans)
	admin.POST("/plans", s.CreatePlan)
	admin.GET("/plans/:sku", s.GetPlan)
	admin.PATCH("/plans/:sku", s.UpdatePlan)
	admin.DELETE("/plans/:sku", s.DeletePlan)

	admin.GET("/subscriptions", s.ListSubscriptionHistory)
	admin.GET("/subscriptions/current", s.GetCurrentSubscription)
	admin.POST("/subscriptions/assign", s.AssignSubscription)
	admin.POST("/subscriptions/:id/approve", s.ApproveSubscription)
	admin.POST("/subscriptions/:id/deactivate", s.DeactivateSubscription)
}

func (s *Server) registerSDKRoutes() {
	sdk := s.engine.Group("/sdk")

	sdk.POST("/login", s.SDKLogin)

	authed := sdk.Group("", s.APIKeyRequired())
	{
		authed.GET("/subscription", s.GetCurrentSubscription)
		authed.GET("/subscriptions", s.ListSubscriptionHistory)
		authed.POST("/subscriptions", s.RequestSubscription)
		authed.POST("/subscriptions/:id/deactivate", s.DeactivateSubscription)
	}
}
