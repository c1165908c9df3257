// Package invoices implementación mínima del colaborador de facturación.
// La facturación completa (render, numeración fiscal, envío) vive fuera
// de este servicio; aquí solo se materializa el contrato CreateFromQuote.
package invoices

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

// Service crea facturas a partir de cotizaciones pagadas.
type Service struct{}

// NewService construye el servicio.
func NewService() *Service {
	return &Service{}
}

// CreateFromQuoteInTx crea la factura de la cotización con numeración
// FAC-AAAA-NNNN consecutiva por año. Idempotente: si la cotización ya
// tiene factura (entrega duplicada de la confirmación), devuelve la
// existente sin crear otra.
func (s *Service) CreateFromQuoteInTx(invoiceRepo repository.InvoiceRepository, q *entity.Quote, processorRef string) (*entity.Invoice, error) {
	existing, err := invoiceRepo.GetByQuoteID(q.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	count, err := invoiceRepo.CountByYear(now.Year())
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		ID:                  uuid.New().String(),
		QuoteID:             q.ID,
		Number:              fmt.Sprintf("FAC-%d-%04d", now.Year(), count+1),
		ClientName:          q.ClientName,
		ClientEmail:         q.ClientEmail,
		Subtotal:            q.Subtotal,
		VATAmount:           q.VATAmount,
		Total:               q.Total,
		ProcessorPaymentRef: processorRef,
		IssuedAt:            now,
		CreatedAt:           now,
	}
	if err := invoiceRepo.Create(inv); err != nil {
		return nil, err
	}
	return inv, nil
}
