// Package router assembles the gin engine: middleware chain, public
// endpoints and the authenticated API surface.
package router

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/auth"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/config"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/logger"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/handler"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/middleware"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	System    *handler.SystemHandler
	Customer  *handler.CustomerHandler
	Isolation *handler.IsolationHandler
	Billing   *handler.BillingHandler
	Router    *handler.RouterHandler
}

var validatorSetup sync.Once

// setupValidator makes binding errors report json/form tag names instead of
// Go struct field names
func setupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// Setup builds the gin engine with the full middleware chain and all routes
func Setup(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validatorSetup.Do(setupValidator)

	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecureHeaders())
	engine.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))

	// Liveness and readiness stay unauthenticated for probes
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(auth.Middleware(jwtService))
	{
		api.GET("/overview", h.System.Overview)

		customers := api.Group("/customers")
		{
			customers.POST("", h.Customer.Create)
			customers.GET("", h.Customer.List)
			customers.GET("/code/:code", h.Customer.GetByCode)
			customers.GET("/:id", h.Customer.Get)
			customers.PUT("/:id", h.Customer.Update)
			customers.PUT("/:id/router", h.Customer.AssignRouter)
			customers.PUT("/:id/lump-sum", h.Customer.SetLumpSum)
			customers.POST("/:id/deactivate", h.Customer.Deactivate)

			customers.GET("/:id/evaluate", h.Isolation.Evaluate)
			customers.GET("/:id/probe", h.Isolation.Probe)
			customers.POST("/:id/isolate", h.Isolation.Isolate)
			customers.POST("/:id/reopen", h.Isolation.Reopen)

			customers.POST("/:id/payments", h.Billing.RecordPayment)
			customers.GET("/:id/payments", h.Billing.ListPayments)
			customers.GET("/:id/invoices", h.Billing.ListInvoices)
			customers.GET("/:id/logs", h.Billing.ListCustomerLogs)
		}

		api.POST("/isolation/sweep", auth.RequireRole(auth.RoleAdmin), h.Isolation.Sweep)

		billingGroup := api.Group("/billing", auth.RequireRole(auth.RoleAdmin))
		{
			billingGroup.POST("/runs", h.Billing.MonthlyRun)
			billingGroup.POST("/mark-overdue", h.Billing.MarkOverdue)
		}

		api.GET("/logs", h.Billing.ListRecentLogs)

		routers := api.Group("/routers")
		{
			routers.GET("", h.Router.List)
			routers.GET("/:id", h.Router.Get)
			routers.POST("/:id/refresh", h.Router.Refresh)
			routers.POST("/refresh", h.Router.RefreshAll)

			admin := routers.Group("", auth.RequireRole(auth.RoleAdmin))
			{
				admin.POST("", h.Router.Register)
				admin.PUT("/:id", h.Router.Update)
				admin.DELETE("/:id", h.Router.Delete)
				admin.POST("/:id/maintenance", h.Router.EnterMaintenance)
				admin.DELETE("/:id/maintenance", h.Router.ExitMaintenance)
			}
		}
	}

	return engine
}
