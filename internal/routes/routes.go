package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/uz-pay/uz_pay/internal/accounts"
	"github.com/uz-pay/uz_pay/internal/config"
	"github.com/uz-pay/uz_pay/internal/funding"
	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/merchant"
	"github.com/uz-pay/uz_pay/internal/middleware"
	"github.com/uz-pay/uz_pay/internal/notification"
	"github.com/uz-pay/uz_pay/internal/payments"
)

// Deps aggregates shared dependencies required to wire routes.
// DB and Cache may be nil in development; Notifier defaults to the logger.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Notifier notification.Notifier
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Notifier == nil {
		d.Notifier = notification.NewLoggerNotifier(d.Logger)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Services and handlers
	ledgerOpts := []ledger.Option{ledger.WithDefaultCurrency(d.Cfg.DefaultCurrency)}
	var ledgerBackend ledger.Ledger
	var merchantRepo merchant.Repository
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB, ledgerOpts...)
		merchantRepo = merchant.NewPostgresRepository(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory(ledgerOpts...)
		merchantRepo = merchant.NewMemoryRepository()
	}
	if d.Cache != nil {
		merchantRepo = merchant.NewCachedRepository(merchantRepo, d.Cache, d.Cfg.MerchantCacheTTL, d.Logger)
	}

	accountCatalog := accounts.NewCatalog(ledgerBackend, d.Logger)
	merchantCatalog := merchant.NewCatalog(merchantRepo)
	paymentSvc := payments.NewService(ledgerBackend, accountCatalog, merchantCatalog,
		payments.Options{RequireOwner: d.Cfg.RequireCardOwner}, d.Logger)
	fundingSvc := funding.NewService(ledgerBackend, nil, d.Logger)

	paymentHandler := payments.NewHandler(paymentSvc, d.Notifier)
	accountHandler := accounts.NewHandler(accountCatalog, ledgerBackend)
	merchantHandler := merchant.NewHandler(merchantCatalog)
	fundingHandler := funding.NewHandler(fundingSvc, d.Notifier)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Caller routes; identity is asserted by the upstream gateway. The
	// middleware is attached per route so it does not leak onto /admin.
	identity := middleware.UserIdentity()
	RegisterPaymentRoutes(api, paymentHandler, identity, middleware.PaymentRateLimit(d.Cache, d.Cfg.PaymentRateLimit))
	RegisterAccountRoutes(api, accountHandler, identity)
	api.Get("/merchants/:merchantId", identity, merchantHandler.Get)

	admin := api.Group("/admin", middleware.AdminAuth(d.Cfg.AdminTokenHash))
	RegisterAdminRoutes(admin, accountHandler, merchantHandler)
	RegisterFundingRoutes(admin, fundingHandler)

	return nil
}
