package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/garmentsource/storefront-gateway/internal/api/handler"
	"github.com/garmentsource/storefront-gateway/internal/api/middleware"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions  ports.SessionStore
	Cache     ports.ResourceCache
	Upstream  ports.Upstream
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all route trees
// registered. Authorization lives entirely in the guard at each subtree's
// entry point; the trees themselves carry no role checks.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))
	e.Use(middleware.Auth(deps.JWTSecret, deps.Sessions))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Sessions)
	leadHandler := handler.NewLeadHandler(deps.Cache, deps.Upstream)
	productHandler := handler.NewProductHandler(deps.Cache, deps.Upstream)
	orderHandler := handler.NewOrderHandler(deps.Cache, deps.Upstream)
	customizationHandler := handler.NewCustomizationHandler(deps.Cache, deps.Upstream)
	costingHandler := handler.NewCostingHandler(deps.Cache, deps.Upstream)
	documentHandler := handler.NewDocumentHandler(deps.Cache, deps.Upstream)
	userHandler := handler.NewUserHandler(deps.Cache, deps.Upstream)
	settingsHandler := handler.NewSettingsHandler(deps.Cache, deps.Upstream)
	accountHandler := handler.NewAccountHandler()
	metaHandler := handler.NewMetaHandler()

	// --- Public tree (no session required) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/products", productHandler.Catalog)
	e.GET("/products/:id", productHandler.Detail)
	e.POST("/leads", leadHandler.CreateInquiry)
	e.GET("/meta/status-styles", metaHandler.StatusStyles)

	// --- Buyer tree ---
	buyer := e.Group("/buyer", middleware.Guard(domain.RoleBuyer))
	buyer.GET("/leads", leadHandler.MyLeads)
	buyer.GET("/orders", orderHandler.Mine)
	buyer.POST("/orders", orderHandler.Create)
	buyer.GET("/customizations", customizationHandler.Mine)
	buyer.POST("/customizations", customizationHandler.Create)

	// --- Seller tree ---
	seller := e.Group("/seller", middleware.Guard(domain.RoleSeller))
	seller.GET("/products", productHandler.Mine)
	seller.POST("/products", productHandler.Create)
	seller.PUT("/products/:id", productHandler.Update)
	seller.DELETE("/products/:id", productHandler.Delete)
	seller.GET("/leads", leadHandler.List)
	seller.PUT("/leads/:id", leadHandler.Update)
	seller.GET("/customizations", customizationHandler.Queue)
	seller.PUT("/customizations/:id", customizationHandler.Respond)
	seller.GET("/costings", costingHandler.List)
	seller.PUT("/costings/:id", costingHandler.Update)
	seller.GET("/documents", documentHandler.List)
	seller.POST("/documents/generate-:kind/:orderID", documentHandler.Generate)

	// --- Designer tree ---
	designer := e.Group("/designer", middleware.Guard(domain.RoleDesigner))
	designer.GET("/customizations", customizationHandler.Queue)
	designer.PUT("/customizations/:id/design", customizationHandler.AttachDesign)

	// --- Admin tree ---
	admin := e.Group("/admin", middleware.Guard(domain.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/settings", settingsHandler.Get)
	admin.PUT("/settings", settingsHandler.Update)
	admin.GET("/leads", leadHandler.List)
	admin.PUT("/leads/:id", leadHandler.Update)
	admin.GET("/products", productHandler.Catalog)
	admin.DELETE("/products/:id", productHandler.Delete)

	// --- Shared authenticated tree (any role) ---
	account := e.Group("/account", middleware.Guard())
	account.GET("/profile", accountHandler.Profile)
	account.GET("/documents/:id/download", documentHandler.Download)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
