// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"moneta/internal/domain/auth"
	"moneta/internal/domain/catalogs/category"
	"moneta/internal/domain/catalogs/customer"
	"moneta/internal/domain/documents/invoice"
	"moneta/internal/domain/documents/quote"
	"moneta/internal/domain/forecast"
	"moneta/internal/domain/ledger"
	"moneta/internal/infrastructure/http/v1/handlers"
	"moneta/internal/infrastructure/http/v1/middleware"
	"moneta/internal/infrastructure/storage/postgres"
	"moneta/internal/infrastructure/storage/postgres/auth_repo"
	"moneta/internal/infrastructure/storage/postgres/catalog_repo"
	"moneta/internal/infrastructure/storage/postgres/document_repo"
	"moneta/internal/infrastructure/storage/postgres/ledger_repo"
	"moneta/pkg/logger"
	"moneta/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager coordinates transactions across services and repos
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTService issues and validates access tokens
	JWTService *auth.JWTService

	// AuthConfig tunes lockout and refresh token behavior
	AuthConfig auth.ServiceConfig

	// Clock supplies now for derived statuses and month windows
	Clock func() time.Time
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Gzip())
	router.Use(middleware.ErrorHandler())

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repos are stateless over the tx manager; number allocation joins
	// whatever transaction is open in the context.
	txm := cfg.TxManager

	baseHandler := handlers.NewBaseHandler()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		registerAuthRoutes(apiV1, baseHandler, cfg, txm)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTService))

		registerCatalogRoutes(protected, baseHandler, txm)
		registerLedgerRoutes(protected, baseHandler, txm, cfg.Clock)
		registerDocumentRoutes(protected, baseHandler, txm, cfg.Clock)
		registerReportRoutes(protected, baseHandler, txm, cfg.Clock)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, txm *postgres.TxManager) {
	userRepo := auth_repo.NewUserRepo(txm)
	tokenRepo := auth_repo.NewTokenRepo(txm)
	authService := auth.NewService(userRepo, tokenRepo, cfg.JWTService, cfg.AuthConfig)

	authHandler := handlers.NewAuthHandler(base, authService)

	public := rg.Group("/auth")
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTService))

	authHandler.RegisterRoutes(public, protected)
}

// registerCatalogRoutes registers category and customer endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, txm *postgres.TxManager) {
	{
		repo := catalog_repo.NewCategoryRepo(txm)
		service := category.NewService(repo)
		handler := handlers.NewCategoryHandler(base, service)
		RegisterCatalogRoutes(rg.Group("/categories"), handler)
	}

	{
		repo := catalog_repo.NewCustomerRepo(txm)
		service := customer.NewService(repo)
		handler := handlers.NewCustomerHandler(base, service)
		RegisterCatalogRoutes(rg.Group("/customers"), handler)
	}
}

// registerLedgerRoutes registers transaction endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, txm *postgres.TxManager, clock func() time.Time) {
	repo := ledger_repo.NewTransactionRepo(txm)
	catRepo := catalog_repo.NewCategoryRepo(txm)
	service := ledger.NewService(repo, catRepo, clock)

	handler := handlers.NewTransactionHandler(base, service)

	group := rg.Group("/transactions")
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
}

// registerDocumentRoutes registers invoice and quote endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, txm *postgres.TxManager, clock func() time.Time) {
	num := newNumerator(txm)
	customerRepo := catalog_repo.NewCustomerRepo(txm)

	invoiceRepo := document_repo.NewInvoiceRepo(txm)
	invoiceService := invoice.NewService(invoiceRepo, customerRepo, num, txm, clock)
	invoiceHandler := handlers.NewInvoiceHandler(base, invoiceService)
	invoiceHandler.RegisterRoutes(rg.Group("/invoices"))

	quoteRepo := document_repo.NewQuoteRepo(txm)
	quoteService := quote.NewService(quoteRepo, invoiceRepo, customerRepo, num, txm, clock)
	quoteHandler := handlers.NewQuoteHandler(base, quoteService)
	quoteHandler.RegisterRoutes(rg.Group("/quotes"))
}

// registerReportRoutes registers aggregate and forecasting endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, txm *postgres.TxManager, clock func() time.Time) {
	repo := ledger_repo.NewTransactionRepo(txm)
	catRepo := catalog_repo.NewCategoryRepo(txm)
	ledgerService := ledger.NewService(repo, catRepo, clock)
	forecastService := forecast.NewService(ledgerService, clock)

	handler := handlers.NewReportsHandler(base, ledgerService, forecastService)
	handler.RegisterRoutes(rg.Group("/reports"))
}

// newNumerator wires number allocation to the transaction manager so
// an allocation inside RunInTransaction joins the open transaction.
func newNumerator(txm *postgres.TxManager) *numerator.Service {
	return numerator.New(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})
}
