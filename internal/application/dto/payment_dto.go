package dto

import "github.com/shopspring/decimal"

// CustomScheduleRequest body para PUT /api/quotes/:id/payments/schedule.
type CustomScheduleRequest struct {
	Schedule []ScheduleEntryRequest `json:"schedule"`
}

// PaymentResponse cuota de pago en respuestas.
type PaymentResponse struct {
	ID              string           `json:"id"`
	QuoteID         string           `json:"quote_id"`
	PaymentNumber   int              `json:"payment_number"`
	Label           string           `json:"label"`
	Description     string           `json:"description,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Percentage      *decimal.Decimal `json:"percentage,omitempty"`
	Status          string           `json:"status"`
	ValidationToken string           `json:"validation_token,omitempty"`
	DueDate         string           `json:"due_date,omitempty"`
	SentAt          string           `json:"sent_at,omitempty"`
	PaidAt          string           `json:"paid_at,omitempty"`
}

// PublicPaymentResponse vista pública de una cuota por token.
type PublicPaymentResponse struct {
	QuoteNumber   string          `json:"quote_number"`
	PaymentNumber int             `json:"payment_number"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
}

// PaymentSummaryResponse vista agregada del cobro de una cotización.
// PaymentStatus: unpaid | partially_paid | fully_paid.
type PaymentSummaryResponse struct {
	QuoteID         string          `json:"quote_id"`
	Total           decimal.Decimal `json:"total"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaidCount       int             `json:"paid_count"`
	TotalCount      int             `json:"total_count"`
	PaymentStatus   string          `json:"payment_status"`
}

// CheckoutRequest body para crear una sesión de pago; las URLs son
// opcionales, con fallback a las configuradas.
type CheckoutRequest struct {
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// CheckoutSessionResponse sesión creada en el procesador.
type CheckoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentConfirmation evento entrante de pago completado: referencia del
// procesador más la metadata adjuntada al crear la sesión. PaymentID
// vacío = camino legado de anticipo único.
type PaymentConfirmation struct {
	ProcessorPaymentRef string `json:"payment_ref"`
	SessionID           string `json:"session_id,omitempty"`
	QuoteID             string `json:"quote_id"`
	QuoteNumber         string `json:"quote_number,omitempty"`
	PaymentID           string `json:"payment_id,omitempty"`
	PaymentLabel        string `json:"payment_label,omitempty"`
}
