package payments

import (
	"context"

	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos
// del motor atados a la misma tx (misma forma que en quotes; la interfaz
// se declara del lado del consumidor).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// TokenIssuer emite tokens de acceso público no adivinables.
type TokenIssuer interface {
	Mint() string
}

// Notifier correos salientes fire-and-forget.
type Notifier interface {
	QuoteSent(q *entity.Quote)
	PaymentRequested(q *entity.Quote, p *entity.QuotePayment)
	PaymentReceived(q *entity.Quote, p *entity.QuotePayment)
}

// CheckoutSessionInput datos para crear una sesión de pago en el procesador.
// AmountCents va en unidades menores; la metadata enlaza la sesión con la
// cotización y la cuota para que la conciliación encuentre la fila.
type CheckoutSessionInput struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession sesión creada: id de correlación y URL de redirección.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// CheckoutClient puerto hacia el procesador de pagos. Sin reintentos:
// el fallo se propaga tal cual al caller.
type CheckoutClient interface {
	CreateSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
}

// InvoiceService colaborador de facturación. CreateFromQuoteInTx usa el
// repositorio del caller (misma transacción) y es idempotente: si la
// cotización ya tiene factura, devuelve la existente.
type InvoiceService interface {
	CreateFromQuoteInTx(invoiceRepo repository.InvoiceRepository, q *entity.Quote, processorRef string) (*entity.Invoice, error)
}
