package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	QuoteStore *quotes.QuoteStore
	Scheduler  *payments.Scheduler
	Bridge     *payments.CheckoutBridge
	Reconciler *payments.Reconciler
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Rutas públicas por token (la credencial es el propio enlace)
	public := app.Group("/public")
	publicHandler := NewPublicHandler(deps.QuoteStore, deps.Scheduler, deps.Bridge)
	public.Get("/quotes/:token", publicHandler.GetQuote)
	public.Post("/quotes/:token/accept", publicHandler.AcceptQuote)
	public.Get("/payments/:token", publicHandler.GetPayment)
	public.Post("/payments/:token/checkout", publicHandler.Checkout)

	// Webhooks del procesador de pagos (sin Bearer; el procesador no lo manda)
	webhooks := app.Group("/webhooks")
	webhookHandler := NewWebhookHandler(deps.Reconciler)
	webhooks.Post("/payments", webhookHandler.ConfirmPayment)

	// Back-office (requiere Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Quotes (protegido)
	quotesGroup := api.Group("/quotes")
	quoteHandler := NewQuoteHandler(deps.QuoteStore)
	quotesGroup.Post("/", quoteHandler.Create)
	quotesGroup.Get("/", quoteHandler.List)
	quotesGroup.Get("/:id", quoteHandler.GetByID)
	quotesGroup.Put("/:id", quoteHandler.Update)
	quotesGroup.Delete("/:id", RequireRole("admin"), quoteHandler.Delete)
	quotesGroup.Post("/:id/send", quoteHandler.Send)
	quotesGroup.Post("/:id/accept", quoteHandler.Accept)
	quotesGroup.Patch("/:id/status", quoteHandler.UpdateStatus)

	// Plan de cuotas (protegido, colgado de la cotización)
	paymentHandler := NewPaymentHandler(deps.Scheduler, deps.Bridge)
	quotesGroup.Get("/:id/payments", paymentHandler.ListByQuote)
	quotesGroup.Get("/:id/payments/summary", paymentHandler.GetSummary)
	quotesGroup.Post("/:id/payments/schedule/default", paymentHandler.CreateDefaultSchedule)
	quotesGroup.Put("/:id/payments/schedule", paymentHandler.CreateCustomSchedule)
	quotesGroup.Post("/:id/checkout", paymentHandler.CreateDepositCheckout)

	// Cuotas individuales (protegido)
	paymentsGroup := api.Group("/payments")
	paymentsGroup.Post("/:id/send", paymentHandler.Send)
	paymentsGroup.Post("/:id/cancel", paymentHandler.Cancel)
	paymentsGroup.Post("/:id/checkout", paymentHandler.CreateCheckout)
}
