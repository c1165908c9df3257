package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
)

// Reconciler aplica las confirmaciones asíncronas del procesador al
// estado guardado. La entrega es at-least-once: todo el efecto (marcar
// pagado, cerrar la cotización, facturar) es idempotente; una entrega
// repetida termina en no-op exitoso para que el emisor deje de reintentar.
type Reconciler struct {
	txRunner   TxRunner
	invoiceSvc InvoiceService
	notifier   Notifier
	log        *logger.Logger
}

// NewReconciler construye el conciliador.
func NewReconciler(txRunner TxRunner, invoiceSvc InvoiceService, notifier Notifier, log *logger.Logger) *Reconciler {
	return &Reconciler{txRunner: txRunner, invoiceSvc: invoiceSvc, notifier: notifier, log: log}
}

// ConfirmPayment procesa un pago completado. Con payment_id en la
// metadata es el camino de cuotas; sin él, el camino legado de anticipo
// único sobre la cotización.
func (uc *Reconciler) ConfirmPayment(ctx context.Context, in dto.PaymentConfirmation) error {
	if in.ProcessorPaymentRef == "" {
		return fmt.Errorf("%w: falta la referencia de pago del procesador", domain.ErrValidation)
	}
	if in.PaymentID == "" && in.QuoteID == "" {
		return fmt.Errorf("%w: la confirmación no trae metadata de cotización ni de cuota", domain.ErrValidation)
	}

	var notifyQuote *entity.Quote
	var notifyPayment *entity.QuotePayment
	replay := false

	err := uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if in.PaymentID != "" {
			return uc.confirmInstallment(quoteRepo, paymentRepo, invoiceRepo, in, &notifyQuote, &notifyPayment, &replay)
		}
		return uc.confirmDeposit(quoteRepo, invoiceRepo, in, &notifyQuote, &replay)
	})
	if err != nil {
		return err
	}

	if replay {
		uc.log.Info().Str("payment_ref", in.ProcessorPaymentRef).Msg("confirmación duplicada ignorada")
		return nil
	}
	if notifyQuote != nil {
		uc.notifier.PaymentReceived(notifyQuote, notifyPayment)
	}
	return nil
}

func (uc *Reconciler) confirmInstallment(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	in dto.PaymentConfirmation,
	notifyQuote **entity.Quote,
	notifyPayment **entity.QuotePayment,
	replay *bool,
) error {
	p, err := paymentRepo.GetByID(in.PaymentID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	ok, err := paymentRepo.MarkAsPaid(p.ID, in.ProcessorPaymentRef, now)
	if err != nil {
		return err
	}
	if !ok {
		// Ya estaba pagada: entrega repetida.
		*replay = true
		return nil
	}
	p.Status = entity.PaymentStatusPaid
	p.PaidAt = &now
	p.ProcessorPaymentRef = in.ProcessorPaymentRef

	q, err := quoteRepo.GetByID(p.QuoteID)
	if err != nil {
		return err
	}
	if q == nil {
		return domain.ErrNotFound
	}

	rows, err := paymentRepo.ListByQuote(q.ID)
	if err != nil {
		return err
	}
	summary := buildSummary(q, rows)
	if summary.PaymentStatus == "fully_paid" {
		// Pagada por completo: la cotización cierra en paid y se factura.
		// El condicional y UNIQUE(quote_id) en invoices cubren duplicados.
		if _, err := quoteRepo.MarkAsPaid(q.ID, in.ProcessorPaymentRef, summary.TotalPaid, now); err != nil {
			return err
		}
		q.Status = entity.QuoteStatusPaid
		if _, err := uc.invoiceSvc.CreateFromQuoteInTx(invoiceRepo, q, in.ProcessorPaymentRef); err != nil {
			return err
		}
	}

	*notifyQuote = q
	*notifyPayment = p
	uc.log.Info().
		Str("quote_id", q.ID).
		Str("payment_id", p.ID).
		Str("payment_status", summary.PaymentStatus).
		Msg("pago de cuota conciliado")
	return nil
}

func (uc *Reconciler) confirmDeposit(
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	in dto.PaymentConfirmation,
	notifyQuote **entity.Quote,
	replay *bool,
) error {
	q, err := quoteRepo.GetByID(in.QuoteID)
	if err != nil {
		return err
	}
	if q == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	ok, err := quoteRepo.MarkAsPaid(q.ID, in.ProcessorPaymentRef, q.Total, now)
	if err != nil {
		return err
	}
	if !ok {
		*replay = true
		return nil
	}
	q.Status = entity.QuoteStatusPaid
	q.PaidAt = &now

	if _, err := uc.invoiceSvc.CreateFromQuoteInTx(invoiceRepo, q, in.ProcessorPaymentRef); err != nil {
		return err
	}

	*notifyQuote = q
	uc.log.Info().Str("quote_id", q.ID).Msg("anticipo conciliado")
	return nil
}
