package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

var _ repository.QuotePaymentRepository = (*QuotePaymentRepo)(nil)

const paymentColumns = `
	id, quote_id, payment_number, label, description, amount, percentage, status,
	validation_token, due_date, sent_at, paid_at, checkout_session_id,
	processor_payment_ref, created_at, updated_at`

// QuotePaymentRepo implementación de QuotePaymentRepository sobre PostgreSQL
// (usable con pool o tx).
type QuotePaymentRepo struct {
	q Querier
}

// NewQuotePaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuotePaymentRepository(q Querier) *QuotePaymentRepo {
	return &QuotePaymentRepo{q: q}
}

// CreateBatch inserta el plan completo. UNIQUE(quote_id, payment_number)
// respalda la contigüidad del numerado.
func (r *QuotePaymentRepo) CreateBatch(payments []*entity.QuotePayment) error {
	query := `
		INSERT INTO quote_payments (
			id, quote_id, payment_number, label, description, amount, percentage,
			status, due_date, checkout_session_id, processor_payment_ref,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	for _, p := range payments {
		_, err := r.q.Exec(context.Background(), query,
			p.ID, p.QuoteID, p.PaymentNumber, p.Label, p.Description,
			p.Amount, p.Percentage, string(p.Status), p.DueDate, "", "",
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert quote payment %d: %w", p.PaymentNumber, err)
		}
	}
	return nil
}

// GetByID obtiene una cuota por ID.
func (r *QuotePaymentRepo) GetByID(id string) (*entity.QuotePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM quote_payments WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByToken obtiene una cuota por su token público de pago.
func (r *QuotePaymentRepo) GetByToken(token string) (*entity.QuotePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM quote_payments WHERE validation_token = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, token))
}

// ListByQuote devuelve las cuotas en orden de cobro.
func (r *QuotePaymentRepo) ListByQuote(quoteID string) ([]*entity.QuotePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM quote_payments WHERE quote_id = $1 ORDER BY payment_number`
	rows, err := r.q.Query(context.Background(), query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.QuotePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountByQuote cuenta las cuotas de la cotización (cualquier estado).
func (r *QuotePaymentRepo) CountByQuote(quoteID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM quote_payments WHERE quote_id = $1`, quoteID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quote payments: %w", err)
	}
	return count, nil
}

// CountUnpaidBefore cuenta cuotas anteriores a paymentNumber sin pagar.
// FOR UPDATE bloquea esas filas hasta el commit: una confirmación
// concurrente no puede colarse entre la verificación y el envío.
func (r *QuotePaymentRepo) CountUnpaidBefore(quoteID string, paymentNumber int) (int, error) {
	query := `
		SELECT COUNT(*) FROM (
			SELECT id FROM quote_payments
			WHERE quote_id = $1 AND payment_number < $2
				AND status NOT IN ('paid', 'cancelled')
			FOR UPDATE
		) unpaid`
	var count int
	err := r.q.QueryRow(context.Background(), query, quoteID, paymentNumber).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unpaid payments: %w", err)
	}
	return count, nil
}

// UpdateAmount actualiza el monto de una cuota pending (las sent/paid son inmutables).
func (r *QuotePaymentRepo) UpdateAmount(id string, amount decimal.Decimal) error {
	query := `UPDATE quote_payments SET amount = $2, updated_at = now() WHERE id = $1 AND status = 'pending'`
	_, err := r.q.Exec(context.Background(), query, id, amount)
	if err != nil {
		return fmt.Errorf("update payment amount: %w", err)
	}
	return nil
}

// DeletePending borra las cuotas todavía pending (reemplazo de plan).
func (r *QuotePaymentRepo) DeletePending(quoteID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM quote_payments WHERE quote_id = $1 AND status = 'pending'`, quoteID)
	if err != nil {
		return fmt.Errorf("delete pending payments: %w", err)
	}
	return nil
}

// MarkAsSent transición condicional a sent con token nuevo. El reenvío
// de una cuota ya sent es legal y revoca el token anterior.
func (r *QuotePaymentRepo) MarkAsSent(id, token string, at time.Time) (bool, error) {
	query := `
		UPDATE quote_payments SET status = 'sent', validation_token = $2, sent_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'sent')`
	tag, err := r.q.Exec(context.Background(), query, id, token, at)
	if err != nil {
		return false, fmt.Errorf("mark payment sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAsPaid transición condicional a paid, idempotente ante entregas duplicadas.
func (r *QuotePaymentRepo) MarkAsPaid(id, processorRef string, at time.Time) (bool, error) {
	query := `
		UPDATE quote_payments SET status = 'paid', paid_at = $3, processor_payment_ref = $2, updated_at = $3
		WHERE id = $1 AND status <> 'paid'`
	tag, err := r.q.Exec(context.Background(), query, id, processorRef, at)
	if err != nil {
		return false, fmt.Errorf("mark payment paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel transición condicional pending -> cancelled.
func (r *QuotePaymentRepo) Cancel(id string) (bool, error) {
	query := `UPDATE quote_payments SET status = 'cancelled', updated_at = now() WHERE id = $1 AND status = 'pending'`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return false, fmt.Errorf("cancel payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetCheckoutSession guarda el id de sesión del procesador.
func (r *QuotePaymentRepo) SetCheckoutSession(id, sessionID string) error {
	query := `UPDATE quote_payments SET checkout_session_id = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, sessionID)
	if err != nil {
		return fmt.Errorf("set payment checkout session: %w", err)
	}
	return nil
}

func (r *QuotePaymentRepo) scanOne(row pgx.Row) (*entity.QuotePayment, error) {
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanPayment(row rowScanner) (*entity.QuotePayment, error) {
	var p entity.QuotePayment
	var status string
	err := row.Scan(
		&p.ID, &p.QuoteID, &p.PaymentNumber, &p.Label, &p.Description,
		&p.Amount, &p.Percentage, &status,
		&p.ValidationToken, &p.DueDate, &p.SentAt, &p.PaidAt,
		&p.CheckoutSessionID, &p.ProcessorPaymentRef, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan quote payment: %w", err)
	}
	p.Status = entity.PaymentStatus(status)
	return &p, nil
}
