package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura emitida al completarse el pago de una cotización.
// La facturación es un colaborador externo; aquí solo se guarda el
// snapshot mínimo que produce CreateFromQuote. UNIQUE(quote_id) en la
// tabla es el respaldo de idempotencia ante confirmaciones duplicadas.
type Invoice struct {
	ID      string
	QuoteID string
	Number  string // FAC-AAAA-NNNN, consecutivo por año

	ClientName  string
	ClientEmail string

	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal

	ProcessorPaymentRef string

	IssuedAt  time.Time
	CreatedAt time.Time
}
