package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus estado de una cotización. Enum cerrado: toda transición pasa
// por CanTransitionTo, nunca por comparaciones de string repartidas.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
	QuoteStatusPaid     QuoteStatus = "paid"
)

// quoteTransitions tabla única de transiciones legales.
// La vuelta sent/accepted -> draft existe: editar contenido de una cotización
// ya enviada la regresa a borrador (el enlace público debe morir).
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:    {QuoteStatusSent},
	QuoteStatusSent:     {QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired, QuoteStatusDraft},
	QuoteStatusAccepted: {QuoteStatusPaid, QuoteStatusDraft},
	QuoteStatusRejected: {},
	QuoteStatusExpired:  {},
	QuoteStatusPaid:     {},
}

// ParseQuoteStatus valida un estado recibido como string.
func ParseQuoteStatus(s string) (QuoteStatus, bool) {
	st := QuoteStatus(s)
	_, ok := quoteTransitions[st]
	return st, ok
}

// CanTransitionTo indica si la transición s -> target es legal.
// sent -> sent es legal: un reenvío emite un token nuevo y revoca el anterior.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	for _, t := range quoteTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones.
func (s QuoteStatus) IsTerminal() bool {
	return len(quoteTransitions[s]) == 0
}

// AllowsPublicToken indica si el estado admite enlace público vigente.
// Fuera de {sent, accepted, paid} el token debe quedar en NULL.
func (s QuoteStatus) AllowsPublicToken() bool {
	return s == QuoteStatusSent || s == QuoteStatusAccepted || s == QuoteStatusPaid
}

// QuoteItem línea de la cotización. Total es siempre Quantity × UnitPrice,
// recalculado en cada edición, nunca aceptado del cliente.
type QuoteItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// ScheduleEntry entrada del plan de pagos: etiqueta y porcentaje del total.
// La suma de porcentajes del plan debe ser exactamente 100.
type ScheduleEntry struct {
	Label      string          `json:"label"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Quote cotización de decoración de eventos.
// Los datos del cliente son un snapshot desnormalizado, no una referencia viva.
type Quote struct {
	ID     string
	Number string

	ClientName  string
	ClientEmail string
	ClientPhone string

	EventDate *time.Time
	EventType string
	Notes     string

	Items []QuoteItem

	// Derivados: Subtotal = Σ item.Total; VATAmount = Subtotal × VATRate/100;
	// Total = Subtotal + VATAmount. Siempre se recalculan juntos (Recalculate).
	VATRate   decimal.Decimal
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal

	Status       QuoteStatus
	ValidityDays int
	ExpiresAt    *time.Time

	// ValidationToken credencial opaca del enlace público. No nulo solo
	// mientras Status ∈ {sent, accepted, paid}.
	ValidationToken *string

	PaymentSchedule []ScheduleEntry
	DepositPercent  decimal.Decimal // cache de PaymentSchedule[0].Percentage

	SentAt     *time.Time
	AcceptedAt *time.Time
	PaidAt     *time.Time
	PaidAmount decimal.Decimal

	CheckoutSessionID   string
	ProcessorPaymentRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recalculate recalcula totales de líneas, subtotal, IVA y total desde cero.
// Es el único punto del sistema que escribe los campos derivados.
func (q *Quote) Recalculate() {
	subtotal := decimal.Zero
	for i := range q.Items {
		q.Items[i].Total = q.Items[i].Quantity.Mul(q.Items[i].UnitPrice).Round(2)
		subtotal = subtotal.Add(q.Items[i].Total)
	}
	q.Subtotal = subtotal.Round(2)
	q.VATAmount = subtotal.Mul(q.VATRate).Div(decimal.NewFromInt(100)).Round(2)
	q.Total = q.Subtotal.Add(q.VATAmount)
}

// IsExpired indica si la cotización ya pasó su fecha de vencimiento.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}
