package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
)

// WebhookHandler recibe las confirmaciones asíncronas del procesador de
// pagos. La entrega es at-least-once: el conciliador es idempotente y una
// confirmación repetida responde 200 para cortar los reintentos.
type WebhookHandler struct {
	reconciler *payments.Reconciler
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(reconciler *payments.Reconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// ConfirmPayment aplica un pago completado al estado guardado.
// POST /webhooks/payments
func (h *WebhookHandler) ConfirmPayment(c *fiber.Ctx) error {
	var in dto.PaymentConfirmation
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reconciler.ConfirmPayment(c.Context(), in); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
