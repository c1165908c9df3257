package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
	"github.com/tu-usuario/decora-eventos/internal/domain/schedule"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
)

// Scheduler deriva y mantiene el plan de cuotas de una cotización.
// Una cuota sent es inmutable (el pagador ya vio su monto); solo las
// pending se recalculan o se reemplazan.
type Scheduler struct {
	quoteRepo   repository.QuoteRepository
	paymentRepo repository.QuotePaymentRepository
	txRunner    TxRunner
	tokens      TokenIssuer
	notifier    Notifier
	log         *logger.Logger
}

// NewScheduler construye el caso de uso.
func NewScheduler(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	txRunner TxRunner,
	tokens TokenIssuer,
	notifier Notifier,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		quoteRepo:   quoteRepo,
		paymentRepo: paymentRepo,
		txRunner:    txRunner,
		tokens:      tokens,
		notifier:    notifier,
		log:         log,
	}
}

// MaterializeInTx crea las cuotas de la cotización a partir de su plan
// (o del reparto 30/70 si no tiene). payment_number contiguo desde 1.
// Lo invoca el QuoteStore en el primer envío, dentro de su transacción.
func (uc *Scheduler) MaterializeInTx(paymentRepo repository.QuotePaymentRepository, q *entity.Quote, now time.Time) error {
	plan := q.PaymentSchedule
	if len(plan) == 0 {
		plan = schedule.Default()
	}
	if err := schedule.Validate(plan); err != nil {
		return err
	}

	amounts := schedule.SplitAmounts(q.Total, plan)
	rows := make([]*entity.QuotePayment, 0, len(plan))
	for i, e := range plan {
		pct := e.Percentage
		rows = append(rows, &entity.QuotePayment{
			ID:            uuid.New().String(),
			QuoteID:       q.ID,
			PaymentNumber: i + 1,
			Label:         e.Label,
			Amount:        amounts[i],
			Percentage:    &pct,
			Status:        entity.PaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return paymentRepo.CreateBatch(rows)
}

// RecalculateInTx recalcula el monto de las cuotas pending con porcentaje
// a partir del total vigente de la cotización. Las cuotas sent/paid
// conservan su monto (el pagador ya lo vio); la última pending porcentual
// absorbe el residuo para que el plan siga sumando el total exacto.
func (uc *Scheduler) RecalculateInTx(paymentRepo repository.QuotePaymentRepository, q *entity.Quote) error {
	rows, err := paymentRepo.ListByQuote(q.ID)
	if err != nil {
		return err
	}

	last := -1
	for i, p := range rows {
		if p.Status == entity.PaymentStatusPending && p.Percentage != nil {
			last = i
		}
	}
	if last == -1 {
		return nil
	}

	fixed := decimal.Zero
	for i, p := range rows {
		if i == last || p.Status == entity.PaymentStatusCancelled {
			continue
		}
		amount := p.Amount
		if p.Status == entity.PaymentStatusPending && p.Percentage != nil {
			amount = schedule.Amount(q.Total, *p.Percentage)
			if !p.Amount.Equal(amount) {
				if err := paymentRepo.UpdateAmount(p.ID, amount); err != nil {
					return err
				}
				p.Amount = amount
			}
		}
		fixed = fixed.Add(amount)
	}

	remainder := q.Total.Sub(fixed)
	if !rows[last].Amount.Equal(remainder) {
		if err := paymentRepo.UpdateAmount(rows[last].ID, remainder); err != nil {
			return err
		}
		rows[last].Amount = remainder
	}
	return nil
}

// CreateDefaultSchedule materializa el reparto canónico 30/70 para una
// cotización que aún no tiene cuotas.
func (uc *Scheduler) CreateDefaultSchedule(ctx context.Context, quoteID string) ([]*dto.PaymentResponse, error) {
	err := uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		_ repository.InvoiceRepository,
	) error {
		q, err := quoteRepo.GetByID(quoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		count, err := paymentRepo.CountByQuote(quoteID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.NewStateError("pago", "plan existente", "crear plan por defecto")
		}
		q.PaymentSchedule = schedule.Default()
		return uc.MaterializeInTx(paymentRepo, q, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return uc.ListByQuote(ctx, quoteID)
}

// CreateCustomSchedule reemplaza el plan: borra las cuotas todavía
// pending e inserta una fila por entrada con montos redondeados a 2
// decimales. Con el cobro ya iniciado (alguna cuota sent o paid) el plan
// es inmutable.
func (uc *Scheduler) CreateCustomSchedule(ctx context.Context, quoteID string, in dto.CustomScheduleRequest) ([]*dto.PaymentResponse, error) {
	entries := make([]entity.ScheduleEntry, 0, len(in.Schedule))
	for _, e := range in.Schedule {
		entries = append(entries, entity.ScheduleEntry{Label: e.Label, Percentage: e.Percentage})
	}
	if err := schedule.Validate(entries); err != nil {
		return nil, err
	}

	err := uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		_ repository.InvoiceRepository,
	) error {
		q, err := quoteRepo.GetByID(quoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		rows, err := paymentRepo.ListByQuote(quoteID)
		if err != nil {
			return err
		}
		for _, p := range rows {
			if p.Status != entity.PaymentStatusPending {
				return domain.NewStateError("pago", string(p.Status), "reemplazar plan")
			}
		}
		if err := paymentRepo.DeletePending(quoteID); err != nil {
			return err
		}

		q.PaymentSchedule = entries
		q.DepositPercent = entries[0].Percentage
		q.UpdatedAt = time.Now()
		if err := quoteRepo.Update(q); err != nil {
			return err
		}
		return uc.MaterializeInTx(paymentRepo, q, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return uc.ListByQuote(ctx, quoteID)
}

// SendPaymentRequest transiciona una cuota a sent y emite su token de
// pago. Regla de orden: la cuota N solo se envía con todas las anteriores
// pagadas; la verificación corre en la misma transacción (FOR UPDATE)
// para no competir con confirmaciones concurrentes.
func (uc *Scheduler) SendPaymentRequest(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	var sentPayment *entity.QuotePayment
	var q *entity.Quote
	err := uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		_ repository.InvoiceRepository,
	) error {
		p, err := paymentRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status != entity.PaymentStatusPending && p.Status != entity.PaymentStatusSent {
			return domain.NewStateError("pago", string(p.Status), "enviar")
		}

		unpaid, err := paymentRepo.CountUnpaidBefore(p.QuoteID, p.PaymentNumber)
		if err != nil {
			return err
		}
		if unpaid > 0 {
			return fmt.Errorf("%w: la cuota %d tiene cuotas anteriores sin pagar",
				domain.ErrInvalidState, p.PaymentNumber)
		}

		now := time.Now()
		token := uc.tokens.Mint()
		ok, err := paymentRepo.MarkAsSent(p.ID, token, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewStateError("pago", string(p.Status), "enviar")
		}
		p.Status = entity.PaymentStatusSent
		p.ValidationToken = &token
		p.SentAt = &now
		sentPayment = p

		q, err = quoteRepo.GetByID(p.QuoteID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if q != nil {
		uc.notifier.PaymentRequested(q, sentPayment)
	}
	uc.log.Info().Str("payment_id", paymentID).Int("payment_number", sentPayment.PaymentNumber).Msg("solicitud de pago enviada")
	return toPaymentResponse(sentPayment), nil
}

// CancelPayment cancela una cuota todavía pending.
func (uc *Scheduler) CancelPayment(ctx context.Context, paymentID string) error {
	p, err := uc.paymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	ok, err := uc.paymentRepo.Cancel(paymentID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewStateError("pago", string(p.Status), "cancelar")
	}
	return nil
}

// ListByQuote cuotas de la cotización en orden de cobro.
func (uc *Scheduler) ListByQuote(ctx context.Context, quoteID string) ([]*dto.PaymentResponse, error) {
	rows, err := uc.paymentRepo.ListByQuote(quoteID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// GetPublicByToken vista pública de una cuota desde su enlace de pago.
func (uc *Scheduler) GetPublicByToken(ctx context.Context, token string) (*dto.PublicPaymentResponse, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	p, err := uc.paymentRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	q, err := uc.quoteRepo.GetByID(p.QuoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.PublicPaymentResponse{
		QuoteNumber:   q.Number,
		PaymentNumber: p.PaymentNumber,
		Label:         p.Label,
		Amount:        p.Amount,
		Status:        string(p.Status),
	}, nil
}

// GetSummary vista agregada del cobro: total, pagado, restante y estado
// global (unpaid | partially_paid | fully_paid).
func (uc *Scheduler) GetSummary(ctx context.Context, quoteID string) (*dto.PaymentSummaryResponse, error) {
	q, err := uc.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.paymentRepo.ListByQuote(quoteID)
	if err != nil {
		return nil, err
	}
	return buildSummary(q, rows), nil
}

func buildSummary(q *entity.Quote, rows []*entity.QuotePayment) *dto.PaymentSummaryResponse {
	totalPaid := decimal.Zero
	paidCount, totalCount := 0, 0
	for _, p := range rows {
		if p.Status == entity.PaymentStatusCancelled {
			continue
		}
		totalCount++
		if p.Status == entity.PaymentStatusPaid {
			paidCount++
			totalPaid = totalPaid.Add(p.Amount)
		}
	}

	status := "unpaid"
	switch {
	case totalCount > 0 && paidCount == totalCount:
		status = "fully_paid"
	case paidCount > 0:
		status = "partially_paid"
	}

	return &dto.PaymentSummaryResponse{
		QuoteID:         q.ID,
		Total:           q.Total,
		TotalPaid:       totalPaid,
		RemainingAmount: q.Total.Sub(totalPaid),
		PaidCount:       paidCount,
		TotalCount:      totalCount,
		PaymentStatus:   status,
	}
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toPaymentResponse(p *entity.QuotePayment) *dto.PaymentResponse {
	resp := &dto.PaymentResponse{
		ID:            p.ID,
		QuoteID:       p.QuoteID,
		PaymentNumber: p.PaymentNumber,
		Label:         p.Label,
		Description:   p.Description,
		Amount:        p.Amount,
		Percentage:    p.Percentage,
		Status:        string(p.Status),
		DueDate:       fmtTime(p.DueDate),
		SentAt:        fmtTime(p.SentAt),
		PaidAt:        fmtTime(p.PaidAt),
	}
	if p.ValidationToken != nil {
		resp.ValidationToken = *p.ValidationToken
	}
	return resp
}
