package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stockroom/internal/alert"
	alertdomain "github.com/smallbiznis/stockroom/internal/alert/domain"
	"github.com/smallbiznis/stockroom/internal/auth"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/session"
	"github.com/smallbiznis/stockroom/internal/authorization"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/stockroom/internal/dashboard/domain"
	"github.com/smallbiznis/stockroom/internal/events"
	"github.com/smallbiznis/stockroom/internal/inventory"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/observability"
	obsmiddleware "github.com/smallbiznis/stockroom/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stockroom/internal/observability/tracing"
	"github.com/smallbiznis/stockroom/internal/product"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/providers"
	"github.com/smallbiznis/stockroom/internal/purchase"
	purchasedomain "github.com/smallbiznis/stockroom/internal/purchase/domain"
	"github.com/smallbiznis/stockroom/internal/ratelimit"
	"github.com/smallbiznis/stockroom/internal/recipient"
	recipientdomain "github.com/smallbiznis/stockroom/internal/recipient/domain"
	"github.com/smallbiznis/stockroom/internal/sale"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	"github.com/smallbiznis/stockroom/internal/salereturn"
	salereturndomain "github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/internal/verification"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires every domain service behind the HTTP surface.
var Module = fx.Module("http.server",
	authorization.Module,
	auth.Module,
	providers.Module,
	events.Module,
	ratelimit.Module,
	verification.Module,
	product.Module,
	inventory.Module,
	purchase.Module,
	sale.Module,
	salereturn.Module,
	recipient.Module,
	alert.Module,
	dashboard.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

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

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// codeSender issues admin verification codes.
type codeSender interface {
	Send(ctx context.Context, target string) error
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	authsvc  authdomain.Service
	sessions *session.Manager
	authzSvc authorization.Service
	limiter  *ratelimit.Limiter
	codes    codeSender

	productSvc   productdomain.Service
	inventorySvc inventorydomain.Service
	purchaseSvc  purchasedomain.Service
	saleSvc      saledomain.Service
	returnSvc    salereturndomain.Service
	recipientSvc recipientdomain.Service
	alertSvc     alertdomain.Service
	dashboardSvc dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Authsvc      authdomain.Service
	Sessions     *session.Manager
	AuthzSvc     authorization.Service
	Limiter      *ratelimit.Limiter `optional:"true"`
	Verification *verification.Service

	ProductSvc   productdomain.Service
	InventorySvc inventorydomain.Service
	PurchaseSvc  purchasedomain.Service
	SaleSvc      saledomain.Service
	ReturnSvc    salereturndomain.Service
	RecipientSvc recipientdomain.Service
	AlertSvc     alertdomain.Service
	DashboardSvc dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		authsvc:      p.Authsvc,
		sessions:     p.Sessions,
		authzSvc:     p.AuthzSvc,
		limiter:      p.Limiter,
		codes:        p.Verification,
		productSvc:   p.ProductSvc,
		inventorySvc: p.InventorySvc,
		purchaseSvc:  p.PurchaseSvc,
		saleSvc:      p.SaleSvc,
		returnSvc:    p.ReturnSvc,
		recipientSvc: p.RecipientSvc,
		alertSvc:     p.AlertSvc,
		dashboardSvc: p.DashboardSvc,
	}
}

func RegisterRoutes(s *Server) {
	s.RegisterAuthRoutes()
	s.RegisterAPIRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.LoginRateLimit(), s.Login)
	auth.POST("/register", s.Register)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.WebAuthRequired(), s.Me)
	auth.POST("/change-password", s.WebAuthRequired(), s.ChangePassword)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.WebAuthRequired())

	// -------- Products --------
	api.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	api.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	api.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
	api.PATCH("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)

	// -------- Inventory --------
	api.GET("/inventory", s.authorize(authorization.ObjectInventory, authorization.ActionView), s.ListInventory)
	api.POST("/inventory", s.authorize(authorization.ObjectInventory, authorization.ActionUpdate), s.UpsertInventory)

	// -------- Purchases --------
	api.GET("/purchases", s.authorize(authorization.ObjectPurchase, authorization.ActionView), s.ListPurchases)
	api.POST("/purchases", s.authorize(authorization.ObjectPurchase, authorization.ActionCreate), s.CreatePurchase)
	api.PATCH("/purchases/:id", s.authorize(authorization.ObjectPurchase, authorization.ActionCreate), s.UpdatePurchaseStatus)

	// -------- Sales --------
	api.GET("/sales", s.authorize(authorization.ObjectSale, authorization.ActionView), s.ListSales)
	api.POST("/sales", s.authorize(authorization.ObjectSale, authorization.ActionCreate), s.CreateSale)

	// -------- Returns --------
	api.GET("/returns", s.authorize(authorization.ObjectReturn, authorization.ActionView), s.ListReturns)
	api.POST("/returns", s.authorize(authorization.ObjectReturn, authorization.ActionCreate), s.CreateReturn)
	api.PATCH("/returns/:id", s.authorize(authorization.ObjectReturn, authorization.ActionUpdate), s.UpdateReturnStatus)
	api.DELETE("/returns/:id", s.authorize(authorization.ObjectReturn, authorization.ActionDelete), s.DeleteReturn)

	// -------- Alert recipients --------
	api.GET("/inventory-notifications", s.authorize(authorization.ObjectRecipient, authorization.ActionView), s.ListRecipients)
	api.POST("/inventory-notifications", s.authorize(authorization.ObjectRecipient, authorization.ActionCreate), s.CreateRecipient)
	api.PUT("/inventory-notifications", s.authorize(authorization.ObjectRecipient, authorization.ActionUpdate), s.SetRecipientActive)
	api.DELETE("/inventory-notifications", s.authorize(authorization.ObjectRecipient, authorization.ActionDelete), s.DeleteRecipient)

	// -------- Alerts --------
	api.POST("/check-inventory-alerts", s.authorize(authorization.ObjectAlert, authorization.ActionRun), s.CheckInventoryAlerts)
	api.GET("/notification-logs", s.authorize(authorization.ObjectAlertLog, authorization.ActionView), s.ListNotificationLogs)

	// -------- Dashboard --------
	api.GET("/stats", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.GetStats)
	api.GET("/records", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.ListRecords)

	// -------- Units --------
	api.GET("/units/convert", s.ConvertUnits)

	// -------- Admin --------
	admin := api.Group("/admin")
	admin.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	admin.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	admin.POST("/users/change-password", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.AdminChangePassword)
	admin.POST("/send-verification", s.authorize(authorization.ObjectVerification, authorization.ActionSend), s.SendVerification)
}
