package quotes_test

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

// Repositorios en memoria con la misma semántica condicional que los de
// PostgreSQL (los Mark* devuelven false si el estado no coincide).

type memQuoteRepo struct {
	rows map[string]*entity.Quote
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{rows: make(map[string]*entity.Quote)}
}

func (r *memQuoteRepo) Create(q *entity.Quote) error {
	r.rows[q.ID] = q
	return nil
}

func (r *memQuoteRepo) GetByID(id string) (*entity.Quote, error) {
	return r.rows[id], nil
}

func (r *memQuoteRepo) GetByToken(token string) (*entity.Quote, error) {
	for _, q := range r.rows {
		if q.ValidationToken != nil && *q.ValidationToken == token {
			return q, nil
		}
	}
	return nil, nil
}

func (r *memQuoteRepo) List(limit, offset int) ([]*entity.Quote, error) {
	out := make([]*entity.Quote, 0, len(r.rows))
	for _, q := range r.rows {
		out = append(out, q)
	}
	return out, nil
}

func (r *memQuoteRepo) Update(q *entity.Quote) error {
	r.rows[q.ID] = q
	return nil
}

func (r *memQuoteRepo) MarkAsSent(id, token string, sentAt, expiresAt time.Time) (bool, error) {
	q, ok := r.rows[id]
	if !ok || (q.Status != entity.QuoteStatusDraft && q.Status != entity.QuoteStatusSent) {
		return false, nil
	}
	q.Status = entity.QuoteStatusSent
	q.ValidationToken = &token
	q.SentAt = &sentAt
	q.ExpiresAt = &expiresAt
	return true, nil
}

func (r *memQuoteRepo) MarkAsAccepted(id string, at time.Time) (bool, error) {
	q, ok := r.rows[id]
	if !ok || q.Status != entity.QuoteStatusSent {
		return false, nil
	}
	q.Status = entity.QuoteStatusAccepted
	q.AcceptedAt = &at
	return true, nil
}

func (r *memQuoteRepo) MarkAsPaid(id, processorRef string, amount decimal.Decimal, at time.Time) (bool, error) {
	q, ok := r.rows[id]
	if !ok || q.Status == entity.QuoteStatusPaid {
		return false, nil
	}
	q.Status = entity.QuoteStatusPaid
	q.PaidAt = &at
	q.PaidAmount = amount
	q.ProcessorPaymentRef = processorRef
	return true, nil
}

func (r *memQuoteRepo) SetStatus(id string, status entity.QuoteStatus) error {
	if q, ok := r.rows[id]; ok {
		q.Status = status
		if !status.AllowsPublicToken() {
			q.ValidationToken = nil
		}
	}
	return nil
}

func (r *memQuoteRepo) SetCheckoutSession(id, sessionID string) error {
	if q, ok := r.rows[id]; ok {
		q.CheckoutSessionID = sessionID
	}
	return nil
}

func (r *memQuoteRepo) Delete(id string) error {
	delete(r.rows, id)
	return nil
}

type memPaymentRepo struct {
	rows []*entity.QuotePayment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{}
}

func (r *memPaymentRepo) CreateBatch(payments []*entity.QuotePayment) error {
	r.rows = append(r.rows, payments...)
	return nil
}

func (r *memPaymentRepo) GetByID(id string) (*entity.QuotePayment, error) {
	for _, p := range r.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) GetByToken(token string) (*entity.QuotePayment, error) {
	for _, p := range r.rows {
		if p.ValidationToken != nil && *p.ValidationToken == token {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) ListByQuote(quoteID string) ([]*entity.QuotePayment, error) {
	var out []*entity.QuotePayment
	for n := 1; ; n++ {
		found := false
		for _, p := range r.rows {
			if p.QuoteID == quoteID && p.PaymentNumber == n {
				out = append(out, p)
				found = true
			}
		}
		if !found {
			return out, nil
		}
	}
}

func (r *memPaymentRepo) CountByQuote(quoteID string) (int, error) {
	count := 0
	for _, p := range r.rows {
		if p.QuoteID == quoteID {
			count++
		}
	}
	return count, nil
}

func (r *memPaymentRepo) CountUnpaidBefore(quoteID string, paymentNumber int) (int, error) {
	count := 0
	for _, p := range r.rows {
		if p.QuoteID == quoteID && p.PaymentNumber < paymentNumber &&
			p.Status != entity.PaymentStatusPaid && p.Status != entity.PaymentStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r *memPaymentRepo) UpdateAmount(id string, amount decimal.Decimal) error {
	for _, p := range r.rows {
		if p.ID == id && p.Status == entity.PaymentStatusPending {
			p.Amount = amount
		}
	}
	return nil
}

func (r *memPaymentRepo) DeletePending(quoteID string) error {
	kept := r.rows[:0]
	for _, p := range r.rows {
		if p.QuoteID == quoteID && p.Status == entity.PaymentStatusPending {
			continue
		}
		kept = append(kept, p)
	}
	r.rows = kept
	return nil
}

func (r *memPaymentRepo) MarkAsSent(id, token string, at time.Time) (bool, error) {
	for _, p := range r.rows {
		if p.ID == id && (p.Status == entity.PaymentStatusPending || p.Status == entity.PaymentStatusSent) {
			p.Status = entity.PaymentStatusSent
			p.ValidationToken = &token
			p.SentAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (r *memPaymentRepo) MarkAsPaid(id, processorRef string, at time.Time) (bool, error) {
	for _, p := range r.rows {
		if p.ID == id && p.Status != entity.PaymentStatusPaid {
			p.Status = entity.PaymentStatusPaid
			p.PaidAt = &at
			p.ProcessorPaymentRef = processorRef
			return true, nil
		}
	}
	return false, nil
}

func (r *memPaymentRepo) Cancel(id string) (bool, error) {
	for _, p := range r.rows {
		if p.ID == id && p.Status == entity.PaymentStatusPending {
			p.Status = entity.PaymentStatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (r *memPaymentRepo) SetCheckoutSession(id, sessionID string) error {
	for _, p := range r.rows {
		if p.ID == id {
			p.CheckoutSessionID = sessionID
		}
	}
	return nil
}

type memInvoiceRepo struct {
	rows []*entity.Invoice
}

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	r.rows = append(r.rows, inv)
	return nil
}

func (r *memInvoiceRepo) GetByQuoteID(quoteID string) (*entity.Invoice, error) {
	for _, inv := range r.rows {
		if inv.QuoteID == quoteID {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) CountByYear(year int) (int, error) {
	count := 0
	for _, inv := range r.rows {
		if inv.IssuedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

type memTxRunner struct {
	quotes   *memQuoteRepo
	payments *memPaymentRepo
	invoices *memInvoiceRepo
}

func (tx *memTxRunner) Run(ctx context.Context, fn func(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(tx.quotes, tx.payments, tx.invoices)
}

type seqTokens struct {
	n int
}

func (s *seqTokens) Mint() string {
	s.n++
	return fmt.Sprintf("token-%d", s.n)
}

type spyNotifier struct {
	quoteSent        []string
	paymentRequested []string
	paymentReceived  int
}

func (s *spyNotifier) QuoteSent(q *entity.Quote) {
	s.quoteSent = append(s.quoteSent, q.ID)
}

func (s *spyNotifier) PaymentRequested(q *entity.Quote, p *entity.QuotePayment) {
	s.paymentRequested = append(s.paymentRequested, p.ID)
}

func (s *spyNotifier) PaymentReceived(q *entity.Quote, p *entity.QuotePayment) {
	s.paymentReceived++
}
