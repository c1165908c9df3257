package repository

import "github.com/tu-usuario/decora-eventos/internal/domain/entity"

// InvoiceRepository puerto de persistencia de facturas (colaborador de
// facturación). UNIQUE(quote_id) en la tabla convierte una confirmación
// duplicada en domain.ErrDuplicate en lugar de una segunda factura.
type InvoiceRepository interface {
	Create(inv *entity.Invoice) error
	GetByQuoteID(quoteID string) (*entity.Invoice, error)
	// CountByYear consecutivo por año para numerar FAC-AAAA-NNNN.
	CountByYear(year int) (int, error)
}
