package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
)

// QuotePaymentRepository puerto de persistencia de cuotas de pago.
type QuotePaymentRepository interface {
	// CreateBatch inserta el plan completo de una vez (payment_number
	// contiguo desde 1; UNIQUE(quote_id, payment_number) lo respalda).
	CreateBatch(payments []*entity.QuotePayment) error

	GetByID(id string) (*entity.QuotePayment, error)
	GetByToken(token string) (*entity.QuotePayment, error)
	// ListByQuote devuelve las cuotas ordenadas por payment_number.
	ListByQuote(quoteID string) ([]*entity.QuotePayment, error)
	CountByQuote(quoteID string) (int, error)

	// CountUnpaidBefore cuenta cuotas con payment_number menor que n y
	// estado distinto de paid/cancelled. Dentro de una transacción usa
	// FOR UPDATE para serializar con confirmaciones concurrentes.
	CountUnpaidBefore(quoteID string, paymentNumber int) (int, error)

	// UpdateAmount solo toca cuotas pending; una cuota sent es inmutable
	// porque el pagador ya vio su monto.
	UpdateAmount(id string, amount decimal.Decimal) error
	DeletePending(quoteID string) error

	// Condicionales, mismo contrato que en QuoteRepository.
	MarkAsSent(id, token string, at time.Time) (bool, error)
	MarkAsPaid(id, processorRef string, at time.Time) (bool, error)
	Cancel(id string) (bool, error)
	SetCheckoutSession(id, sessionID string) error
}
