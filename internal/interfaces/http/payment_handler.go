package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
)

// PaymentHandler maneja las peticiones HTTP del plan de cuotas (protegido).
type PaymentHandler struct {
	scheduler *payments.Scheduler
	bridge    *payments.CheckoutBridge
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(scheduler *payments.Scheduler, bridge *payments.CheckoutBridge) *PaymentHandler {
	return &PaymentHandler{scheduler: scheduler, bridge: bridge}
}

// ListByQuote cuotas de la cotización en orden de cobro.
// GET /api/quotes/:id/payments
func (h *PaymentHandler) ListByQuote(c *fiber.Ctx) error {
	list, err := h.scheduler.ListByQuote(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(list)
}

// GetSummary vista agregada del cobro de la cotización.
// GET /api/quotes/:id/payments/summary
func (h *PaymentHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.scheduler.GetSummary(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}

// CreateDefaultSchedule materializa el reparto 30/70 para una cotización
// sin cuotas.
// POST /api/quotes/:id/payments/schedule/default
func (h *PaymentHandler) CreateDefaultSchedule(c *fiber.Ctx) error {
	list, err := h.scheduler.CreateDefaultSchedule(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

// CreateCustomSchedule reemplaza el plan por uno propio (solo con todas
// las cuotas pending).
// PUT /api/quotes/:id/payments/schedule
func (h *PaymentHandler) CreateCustomSchedule(c *fiber.Ctx) error {
	var in dto.CustomScheduleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	list, err := h.scheduler.CreateCustomSchedule(c.Context(), c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

// Send emite el token de pago de la cuota y la marca sent.
// POST /api/payments/:id/send
func (h *PaymentHandler) Send(c *fiber.Ctx) error {
	payment, err := h.scheduler.SendPaymentRequest(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(payment)
}

// Cancel cancela una cuota todavía pending.
// POST /api/payments/:id/cancel
func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	if err := h.scheduler.CancelPayment(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateCheckout crea la sesión de pago de una cuota sent.
// POST /api/payments/:id/checkout
func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	sess, err := h.bridge.CreateCheckoutSession(c.Context(), c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// CreateDepositCheckout camino legado: cobra el anticipo de una
// cotización aceptada en un único pago.
// POST /api/quotes/:id/checkout
func (h *PaymentHandler) CreateDepositCheckout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	sess, err := h.bridge.CreateDepositCheckout(c.Context(), c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}
