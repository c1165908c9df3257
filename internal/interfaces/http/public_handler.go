package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
)

// PublicHandler rutas de cliente final por token, sin autenticación.
// El token es la credencial: quien lo tiene ve (solo) su recurso.
type PublicHandler struct {
	quotes    *quotes.QuoteStore
	scheduler *payments.Scheduler
	bridge    *payments.CheckoutBridge
}

// NewPublicHandler construye el handler.
func NewPublicHandler(q *quotes.QuoteStore, s *payments.Scheduler, b *payments.CheckoutBridge) *PublicHandler {
	return &PublicHandler{quotes: q, scheduler: s, bridge: b}
}

// GetQuote página pública de la cotización.
// GET /public/quotes/:token
func (h *PublicHandler) GetQuote(c *fiber.Ctx) error {
	quote, err := h.quotes.GetPublicByToken(c.Context(), c.Params("token"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// AcceptQuote el cliente acepta la cotización desde su enlace.
// POST /public/quotes/:token/accept
func (h *PublicHandler) AcceptQuote(c *fiber.Ctx) error {
	quote, err := h.quotes.AcceptByToken(c.Context(), c.Params("token"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// GetPayment vista pública de una cuota por su token de pago.
// GET /public/payments/:token
func (h *PublicHandler) GetPayment(c *fiber.Ctx) error {
	payment, err := h.scheduler.GetPublicByToken(c.Context(), c.Params("token"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(payment)
}

// Checkout el cliente inicia el pago de su cuota desde el enlace.
// POST /public/payments/:token/checkout
func (h *PublicHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	sess, err := h.bridge.CreateCheckoutByToken(c.Context(), c.Params("token"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}
