package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

// TxRunner satisface los puertos de quotes y payments.
var _ quotes.TxRunner = (*TxRunner)(nil)
var _ payments.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los flujos de varios pasos (enviar cotización, conciliar un pago)
// corren completos en una tx: o se aplica todo o nada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	quoteRepo := NewQuoteRepository(tx)
	paymentRepo := NewQuotePaymentRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(quoteRepo, paymentRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
