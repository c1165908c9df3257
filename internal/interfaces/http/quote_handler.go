package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
)

// QuoteHandler maneja las peticiones HTTP de cotizaciones (protegido).
type QuoteHandler struct {
	uc *quotes.QuoteStore
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *quotes.QuoteStore) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Create crea una cotización en borrador.
// POST /api/quotes
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	quote, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(quote)
}

// List lista cotizaciones con paginación.
// GET /api/quotes
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(list)
}

// GetByID obtiene el detalle completo de una cotización.
// GET /api/quotes/:id
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	quote, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// Update reemplaza el contenido de la cotización; si el contenido cambia
// el enlace público se invalida y vuelve a draft.
// PUT /api/quotes/:id
func (h *QuoteHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.UpdateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	quote, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// Delete elimina la cotización y sus cuotas.
// DELETE /api/quotes/:id
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Send envía la cotización al cliente: emite el token público y
// materializa el plan de cuotas si aún no existe.
// POST /api/quotes/:id/send
func (h *QuoteHandler) Send(c *fiber.Ctx) error {
	quote, err := h.uc.MarkAsSent(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// Accept marca la cotización como aceptada (acción del operador).
// POST /api/quotes/:id/accept
func (h *QuoteHandler) Accept(c *fiber.Ctx) error {
	quote, err := h.uc.MarkAsAccepted(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}

// UpdateStatus transición directa del operador (rejected, paid manual...).
// PATCH /api/quotes/:id/status
func (h *QuoteHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	quote, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(quote)
}
