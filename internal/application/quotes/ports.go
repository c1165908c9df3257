package quotes

import (
	"context"
	"time"

	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos
// del motor de cotizaciones atados a la misma tx.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// TokenIssuer emite tokens de acceso público no adivinables. Cada emisión
// pisa el token anterior, revocando el enlace compartido previamente.
type TokenIssuer interface {
	Mint() string
}

// InstallmentPlanner integra el QuoteStore con el planificador de cuotas
// usando los repositorios del caller (misma transacción).
type InstallmentPlanner interface {
	// MaterializeInTx crea el plan de cuotas de la cotización (plan propio
	// o reparto por defecto). Se llama una sola vez, en el primer envío.
	MaterializeInTx(paymentRepo repository.QuotePaymentRepository, q *entity.Quote, now time.Time) error
	// RecalculateInTx recalcula el monto de las cuotas pending con
	// porcentaje tras un cambio del total de la cotización.
	RecalculateInTx(paymentRepo repository.QuotePaymentRepository, q *entity.Quote) error
}

// Notifier correos salientes. Fire-and-forget: la implementación registra
// los fallos en el log y nunca los propaga ni reintenta.
type Notifier interface {
	QuoteSent(q *entity.Quote)
	PaymentRequested(q *entity.Quote, p *entity.QuotePayment)
	PaymentReceived(q *entity.Quote, p *entity.QuotePayment)
}
