package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de una cuota de pago.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSent      PaymentStatus = "sent"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// paymentTransitions tabla única de transiciones legales de una cuota.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusSent, PaymentStatusCancelled},
	PaymentStatusSent:      {PaymentStatusPaid},
	PaymentStatusPaid:      {},
	PaymentStatusCancelled: {},
}

// ParsePaymentStatus valida un estado recibido como string.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(s)
	_, ok := paymentTransitions[st]
	return st, ok
}

// CanTransitionTo indica si la transición s -> target es legal.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// QuotePayment cuota de pago de una cotización.
// PaymentNumber es 1-based y contiguo por cotización; define el orden
// obligatorio de cobro: la cuota N solo se envía con 1..N-1 pagadas.
type QuotePayment struct {
	ID            string
	QuoteID       string
	PaymentNumber int

	Label       string
	Description string

	// Amount monto absoluto. Percentage es nil solo para planes que no
	// provienen de un reparto porcentual; con Percentage no nulo el monto
	// se recalcula mientras la cuota siga pending y el total cambie.
	Amount     decimal.Decimal
	Percentage *decimal.Decimal

	Status PaymentStatus

	// ValidationToken credencial del enlace público de pago,
	// independiente del token de la cotización.
	ValidationToken *string

	DueDate *time.Time
	SentAt  *time.Time
	PaidAt  *time.Time

	CheckoutSessionID   string
	ProcessorPaymentRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}
