package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL
// (usable con pool o tx). UNIQUE(quote_id) es el respaldo final contra
// la doble facturación por confirmaciones duplicadas.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la factura.
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, quote_id, number, client_name, client_email, subtotal, vat_amount,
			total, processor_payment_ref, issued_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.QuoteID, inv.Number, inv.ClientName, inv.ClientEmail,
		inv.Subtotal, inv.VATAmount, inv.Total, inv.ProcessorPaymentRef,
		inv.IssuedAt, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByQuoteID obtiene la factura de una cotización, si existe.
func (r *InvoiceRepo) GetByQuoteID(quoteID string) (*entity.Invoice, error) {
	query := `
		SELECT id, quote_id, number, client_name, client_email, subtotal, vat_amount,
			total, processor_payment_ref, issued_at, created_at
		FROM invoices WHERE quote_id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, quoteID).Scan(
		&inv.ID, &inv.QuoteID, &inv.Number, &inv.ClientName, &inv.ClientEmail,
		&inv.Subtotal, &inv.VATAmount, &inv.Total, &inv.ProcessorPaymentRef,
		&inv.IssuedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by quote: %w", err)
	}
	return &inv, nil
}

// CountByYear cuenta las facturas emitidas en el año (consecutivo FAC-AAAA-NNNN).
func (r *InvoiceRepo) CountByYear(year int) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM invoices WHERE EXTRACT(YEAR FROM issued_at) = $1`, year,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices by year: %w", err)
	}
	return count, nil
}
