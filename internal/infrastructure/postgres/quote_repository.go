package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

const quoteColumns = `
	id, number, client_name, client_email, client_phone, event_date, event_type, notes,
	items, vat_rate, subtotal, vat_amount, total, status, validity_days, expires_at,
	validation_token, payment_schedule, deposit_percent, sent_at, accepted_at, paid_at,
	paid_amount, processor_payment_ref, checkout_session_id, created_at, updated_at`

// QuoteRepo implementación de QuoteRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas y el plan de pagos se guardan como snapshots JSONB en la misma fila.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

// Create persiste una cotización nueva (estado draft, sin token).
func (r *QuoteRepo) Create(quote *entity.Quote) error {
	items, schedulePlan, err := marshalSnapshots(quote)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO quotes (
			id, number, client_name, client_email, client_phone, event_date, event_type, notes,
			items, vat_rate, subtotal, vat_amount, total, status, validity_days,
			payment_schedule, deposit_percent, paid_amount, processor_payment_ref,
			checkout_session_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`
	_, err = r.q.Exec(context.Background(), query,
		quote.ID, quote.Number, quote.ClientName, quote.ClientEmail, quote.ClientPhone,
		quote.EventDate, quote.EventType, quote.Notes,
		items, quote.VATRate, quote.Subtotal, quote.VATAmount, quote.Total,
		string(quote.Status), quote.ValidityDays,
		schedulePlan, quote.DepositPercent, decimal.Zero, "", "",
		quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(id string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByToken obtiene una cotización por su token público.
// Un token en NULL nunca matchea: el enlace revocado simplemente no existe.
func (r *QuoteRepo) GetByToken(token string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE validation_token = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, token))
}

// List lista cotizaciones recientes con paginación.
func (r *QuoteRepo) List(limit, offset int) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// Update reescribe el contenido completo de la cotización, incluidos los
// derivados ya recalculados, el estado y el token (NULL si fue revocado).
func (r *QuoteRepo) Update(quote *entity.Quote) error {
	items, schedulePlan, err := marshalSnapshots(quote)
	if err != nil {
		return err
	}
	query := `
		UPDATE quotes SET
			client_name = $2, client_email = $3, client_phone = $4, event_date = $5,
			event_type = $6, notes = $7, items = $8, vat_rate = $9, subtotal = $10,
			vat_amount = $11, total = $12, status = $13, validity_days = $14,
			validation_token = $15, payment_schedule = $16, deposit_percent = $17,
			updated_at = $18
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		quote.ID, quote.ClientName, quote.ClientEmail, quote.ClientPhone, quote.EventDate,
		quote.EventType, quote.Notes, items, quote.VATRate, quote.Subtotal,
		quote.VATAmount, quote.Total, string(quote.Status), quote.ValidityDays,
		quote.ValidationToken, schedulePlan, quote.DepositPercent, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAsSent transición condicional a sent: emite token y vencimiento.
// El WHERE sobre el estado hace que de dos envíos concurrentes solo uno
// aplique por fila ya modificada; el reenvío (sent -> sent) es legal y
// pisa el token anterior.
func (r *QuoteRepo) MarkAsSent(id, token string, sentAt, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE quotes SET status = 'sent', validation_token = $2, sent_at = $3,
			expires_at = $4, updated_at = $3
		WHERE id = $1 AND status IN ('draft', 'sent')`
	tag, err := r.q.Exec(context.Background(), query, id, token, sentAt, expiresAt)
	if err != nil {
		return false, fmt.Errorf("mark quote sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAsAccepted transición condicional sent -> accepted.
func (r *QuoteRepo) MarkAsAccepted(id string, at time.Time) (bool, error) {
	query := `
		UPDATE quotes SET status = 'accepted', accepted_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'sent'`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return false, fmt.Errorf("mark quote accepted: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAsPaid transición condicional a paid. status <> 'paid' en el WHERE
// hace la operación idempotente ante confirmaciones duplicadas.
func (r *QuoteRepo) MarkAsPaid(id, processorRef string, amount decimal.Decimal, at time.Time) (bool, error) {
	query := `
		UPDATE quotes SET status = 'paid', paid_at = $4, paid_amount = $3,
			processor_payment_ref = $2, updated_at = $4
		WHERE id = $1 AND status <> 'paid'`
	tag, err := r.q.Exec(context.Background(), query, id, processorRef, amount, at)
	if err != nil {
		return false, fmt.Errorf("mark quote paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatus asigna el estado directamente (el caso de uso ya validó la
// transición). Al salir de los estados con enlace público el token se
// anula en el mismo UPDATE: una cotización rechazada no sigue resolviendo.
func (r *QuoteRepo) SetStatus(id string, status entity.QuoteStatus) error {
	query := `
		UPDATE quotes SET status = $2,
			validation_token = CASE WHEN $2 IN ('sent', 'accepted', 'paid') THEN validation_token END,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, string(status))
	if err != nil {
		return fmt.Errorf("set quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetCheckoutSession guarda el id de sesión del procesador (camino de anticipo).
func (r *QuoteRepo) SetCheckoutSession(id, sessionID string) error {
	query := `UPDATE quotes SET checkout_session_id = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, sessionID)
	if err != nil {
		return fmt.Errorf("set quote checkout session: %w", err)
	}
	return nil
}

// Delete elimina la cotización; quote_payments cae por FK ON DELETE CASCADE.
func (r *QuoteRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

func (r *QuoteRepo) scanOne(row pgx.Row) (*entity.Quote, error) {
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*entity.Quote, error) {
	var q entity.Quote
	var status string
	var items, schedulePlan []byte
	err := row.Scan(
		&q.ID, &q.Number, &q.ClientName, &q.ClientEmail, &q.ClientPhone,
		&q.EventDate, &q.EventType, &q.Notes,
		&items, &q.VATRate, &q.Subtotal, &q.VATAmount, &q.Total,
		&status, &q.ValidityDays, &q.ExpiresAt,
		&q.ValidationToken, &schedulePlan, &q.DepositPercent,
		&q.SentAt, &q.AcceptedAt, &q.PaidAt,
		&q.PaidAmount, &q.ProcessorPaymentRef, &q.CheckoutSessionID,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	q.Status = entity.QuoteStatus(status)
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(schedulePlan, &q.PaymentSchedule); err != nil {
		return nil, fmt.Errorf("unmarshal payment_schedule: %w", err)
	}
	return &q, nil
}

func marshalSnapshots(q *entity.Quote) (items, schedulePlan []byte, err error) {
	items, err = json.Marshal(q.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal items: %w", err)
	}
	schedulePlan, err = json.Marshal(q.PaymentSchedule)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal payment_schedule: %w", err)
	}
	return items, schedulePlan, nil
}
