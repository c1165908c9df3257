package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/decora-eventos/internal/application/invoices"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
	"github.com/tu-usuario/decora-eventos/internal/application/tokens"
	"github.com/tu-usuario/decora-eventos/internal/infrastructure/mailer"
	"github.com/tu-usuario/decora-eventos/internal/infrastructure/postgres"
	infrastripe "github.com/tu-usuario/decora-eventos/internal/infrastructure/stripe"
	httpRouter "github.com/tu-usuario/decora-eventos/internal/interfaces/http"
	"github.com/tu-usuario/decora-eventos/pkg/config"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	quoteRepo := postgres.NewQuoteRepository(pool)
	paymentRepo := postgres.NewQuotePaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tokenIssuer := tokens.NewUUIDIssuer()
	notifier := mailer.NewSMTPNotifier(cfg.SMTP, log)
	invoiceSvc := invoices.NewService()
	checkoutClient := infrastripe.NewCheckoutClient(cfg.Stripe.APIKey, log)

	scheduler := payments.NewScheduler(quoteRepo, paymentRepo, txRunner, tokenIssuer, notifier, log)
	quoteStore := quotes.NewQuoteStore(
		quoteRepo, paymentRepo, txRunner, tokenIssuer, scheduler, notifier,
		quotes.Config{
			DefaultValidityDays: cfg.Quotes.DefaultValidityDays,
			NumberPrefix:        cfg.Quotes.NumberPrefix,
		},
		log,
	)
	bridge := payments.NewCheckoutBridge(quoteRepo, paymentRepo, checkoutClient, payments.BridgeConfig{
		Currency:   cfg.Stripe.Currency,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, log)
	reconciler := payments.NewReconciler(txRunner, invoiceSvc, notifier, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Decora Eventos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		QuoteStore: quoteStore,
		Scheduler:  scheduler,
		Bridge:     bridge,
		Reconciler: reconciler,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
