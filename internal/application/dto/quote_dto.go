package dto

import (
	"github.com/shopspring/decimal"
)

// QuoteItemRequest línea de cotización (descripción, cantidad, precio unitario).
// El total de línea lo calcula siempre el servidor.
type QuoteItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ScheduleEntryRequest entrada del plan de pagos.
type ScheduleEntryRequest struct {
	Label      string          `json:"label"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CreateQuoteRequest body para POST /api/quotes.
// PaymentSchedule es opcional; si va vacío se aplica el reparto 30/70.
type CreateQuoteRequest struct {
	ClientName      string                 `json:"client_name"`
	ClientEmail     string                 `json:"client_email"`
	ClientPhone     string                 `json:"client_phone,omitempty"`
	EventDate       string                 `json:"event_date,omitempty"` // AAAA-MM-DD
	EventType       string                 `json:"event_type,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []QuoteItemRequest     `json:"items"`
	VATRate         decimal.Decimal        `json:"vat_rate"`
	ValidityDays    int                    `json:"validity_days,omitempty"`
	PaymentSchedule []ScheduleEntryRequest `json:"payment_schedule,omitempty"`
}

// UpdateQuoteRequest body para PUT /api/quotes/:id. Reemplazo completo del
// contenido. Si el contenido difiere del guardado y Status va vacío, la
// cotización vuelve a draft y su token público se invalida.
type UpdateQuoteRequest struct {
	ClientName      string                 `json:"client_name"`
	ClientEmail     string                 `json:"client_email"`
	ClientPhone     string                 `json:"client_phone,omitempty"`
	EventDate       string                 `json:"event_date,omitempty"`
	EventType       string                 `json:"event_type,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []QuoteItemRequest     `json:"items"`
	VATRate         decimal.Decimal        `json:"vat_rate"`
	ValidityDays    int                    `json:"validity_days,omitempty"`
	PaymentSchedule []ScheduleEntryRequest `json:"payment_schedule,omitempty"`
	Status          string                 `json:"status,omitempty"` // cambio de estado explícito del operador
}

// UpdateStatusRequest body para PATCH /api/quotes/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// MarkPaidRequest body para el override manual de pago (transferencia, efectivo).
type MarkPaidRequest struct {
	ProcessorRef string          `json:"processor_ref,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// QuoteItemResponse línea en respuestas.
type QuoteItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// ScheduleEntryResponse entrada del plan en respuestas.
type ScheduleEntryResponse struct {
	Label      string          `json:"label"`
	Percentage decimal.Decimal `json:"percentage"`
}

// QuoteResponse cotización completa para el back-office.
type QuoteResponse struct {
	ID              string                  `json:"id"`
	Number          string                  `json:"number"`
	ClientName      string                  `json:"client_name"`
	ClientEmail     string                  `json:"client_email"`
	ClientPhone     string                  `json:"client_phone,omitempty"`
	EventDate       string                  `json:"event_date,omitempty"`
	EventType       string                  `json:"event_type,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	Items           []QuoteItemResponse     `json:"items"`
	VATRate         decimal.Decimal         `json:"vat_rate"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	VATAmount       decimal.Decimal         `json:"vat_amount"`
	Total           decimal.Decimal         `json:"total"`
	Status          string                  `json:"status"`
	ValidityDays    int                     `json:"validity_days"`
	ExpiresAt       string                  `json:"expires_at,omitempty"`
	ValidationToken string                  `json:"validation_token,omitempty"`
	PaymentSchedule []ScheduleEntryResponse `json:"payment_schedule"`
	DepositPercent  decimal.Decimal         `json:"deposit_percent"`
	SentAt          string                  `json:"sent_at,omitempty"`
	AcceptedAt      string                  `json:"accepted_at,omitempty"`
	PaidAt          string                  `json:"paid_at,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

// PublicQuoteResponse vista pública por token: sin token ni datos internos.
type PublicQuoteResponse struct {
	Number    string              `json:"number"`
	ClientName string             `json:"client_name"`
	EventDate string              `json:"event_date,omitempty"`
	EventType string              `json:"event_type,omitempty"`
	Items     []QuoteItemResponse `json:"items"`
	VATRate   decimal.Decimal     `json:"vat_rate"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	VATAmount decimal.Decimal     `json:"vat_amount"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	ExpiresAt string              `json:"expires_at,omitempty"`
}
