package quotes

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

// Config valores por defecto del ciclo de vida.
type Config struct {
	DefaultValidityDays int
	NumberPrefix        string
}

// QuoteStore caso de uso dueño de las cotizaciones: CRUD, totales
// derivados y el campo de estado. Nadie más escribe filas de quotes.
type QuoteStore struct {
	quoteRepo   repository.QuoteRepository
	paymentRepo repository.QuotePaymentRepository
	txRunner    TxRunner
	tokens      TokenIssuer
	planner     InstallmentPlanner
	notifier    Notifier
	cfg         Config
	log         *logger.Logger
}

// NewQuoteStore construye el caso de uso.
func NewQuoteStore(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	txRunner TxRunner,
	tokens TokenIssuer,
	planner InstallmentPlanner,
	notifier Notifier,
	cfg Config,
	log *logger.Logger,
) *QuoteStore {
	if cfg.DefaultValidityDays <= 0 {
		cfg.DefaultValidityDays = 30
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "COT"
	}
	return &QuoteStore{
		quoteRepo:   quoteRepo,
		paymentRepo: paymentRepo,
		txRunner:    txRunner,
		tokens:      tokens,
		planner:     planner,
		notifier:    notifier,
		cfg:         cfg,
		log:         log,
	}
}

// Create crea una cotización en draft: calcula líneas/subtotal/IVA/total
// desde los ítems y aplica el plan 30/70 si no viene uno propio.
func (uc *QuoteStore) Create(ctx context.Context, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.ClientName == "" || in.ClientEmail == "" {
		return nil, fmt.Errorf("%w: client_name y client_email son requeridos", domain.ErrValidation)
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: vat_rate debe estar entre 0 y 100", domain.ErrValidation)
	}
	eventDate, err := parseEventDate(in.EventDate)
	if err != nil {
		return nil, err
	}

	plan := schedule.Default()
	if len(in.PaymentSchedule) > 0 {
		plan = toScheduleEntries(in.PaymentSchedule)
		if err := schedule.Validate(plan); err != nil {
			return nil, err
		}
	}

	validity := in.ValidityDays
	if validity <= 0 {
		validity = uc.cfg.DefaultValidityDays
	}

	now := time.Now()
	q := &entity.Quote{
		ID:              uuid.New().String(),
		Number:          fmt.Sprintf("%s-%d", uc.cfg.NumberPrefix, now.Unix()),
		ClientName:      in.ClientName,
		ClientEmail:     in.ClientEmail,
		ClientPhone:     in.ClientPhone,
		EventDate:       eventDate,
		EventType:       in.EventType,
		Notes:           in.Notes,
		Items:           items,
		VATRate:         in.VATRate,
		Status:          entity.QuoteStatusDraft,
		ValidityDays:    validity,
		PaymentSchedule: plan,
		DepositPercent:  plan[0].Percentage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	q.Recalculate()

	if err := uc.quoteRepo.Create(q); err != nil {
		return nil, err
	}
	uc.log.Info().Str("quote_id", q.ID).Str("number", q.Number).Msg("cotización creada")
	return toQuoteResponse(q), nil
}

// Update reemplaza el contenido de la cotización. Si algún campo de
// contenido cambió y el operador no pidió un cambio de estado explícito,
// el token público se invalida y el estado vuelve a draft: el enlace debe
// reflejar siempre el total vigente. Totales siempre desde cero.
func (uc *QuoteStore) Update(ctx context.Context, id string, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.Status.IsTerminal() {
		return nil, domain.NewStateError("cotizacion", string(q.Status), "editar")
	}

	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.ClientName == "" || in.ClientEmail == "" {
		return nil, fmt.Errorf("%w: client_name y client_email son requeridos", domain.ErrValidation)
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: vat_rate debe estar entre 0 y 100", domain.ErrValidation)
	}
	eventDate, err := parseEventDate(in.EventDate)
	if err != nil {
		return nil, err
	}

	plan := q.PaymentSchedule
	if len(in.PaymentSchedule) > 0 {
		plan = toScheduleEntries(in.PaymentSchedule)
		if err := schedule.Validate(plan); err != nil {
			return nil, err
		}
	}
	// Con cuotas ya materializadas el plan no se cambia por aquí: las filas
	// existentes quedarían contradiciendo el plan del quote. Ese cambio pasa
	// por la operación de plan de pagos, que reemplaza las filas pending.
	if !scheduleEqual(q.PaymentSchedule, plan) {
		count, err := uc.paymentRepo.CountByQuote(id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: las cuotas ya existen; el plan se cambia con la operación de plan de pagos", domain.ErrValidation)
		}
	}

	contentChanged := q.ClientName != in.ClientName ||
		q.ClientEmail != in.ClientEmail ||
		q.ClientPhone != in.ClientPhone ||
		q.Notes != in.Notes ||
		q.EventType != in.EventType ||
		!sameDate(q.EventDate, eventDate) ||
		!itemsEqual(q.Items, items) ||
		!q.VATRate.Equal(in.VATRate) ||
		!scheduleEqual(q.PaymentSchedule, plan)

	q.ClientName = in.ClientName
	q.ClientEmail = in.ClientEmail
	q.ClientPhone = in.ClientPhone
	q.EventDate = eventDate
	q.EventType = in.EventType
	q.Notes = in.Notes
	q.Items = items
	q.VATRate = in.VATRate
	q.PaymentSchedule = plan
	q.DepositPercent = plan[0].Percentage
	if in.ValidityDays > 0 {
		q.ValidityDays = in.ValidityDays
	}
	q.Recalculate()

	if in.Status != "" {
		target, ok := entity.ParseQuoteStatus(in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, in.Status)
		}
		if target != q.Status && !q.Status.CanTransitionTo(target) {
			return nil, domain.NewStateError("cotizacion", string(q.Status), in.Status)
		}
		q.Status = target
		if !target.AllowsPublicToken() {
			// El token solo vive en sent/accepted/paid.
			q.ValidationToken = nil
		}
	} else if contentChanged && (q.Status == entity.QuoteStatusSent || q.Status == entity.QuoteStatusAccepted) {
		// El enlace público muere en cuanto el contenido cambia.
		q.ValidationToken = nil
		q.Status = entity.QuoteStatusDraft
	}
	q.UpdatedAt = time.Now()

	err = uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		_ repository.InvoiceRepository,
	) error {
		if err := quoteRepo.Update(q); err != nil {
			return err
		}
		// Cuotas pending con porcentaje siguen el total vigente.
		return uc.planner.RecalculateInTx(paymentRepo, q)
	})
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(q), nil
}

// MarkAsSent transiciona a sent, emite un token nuevo (el anterior queda
// revocado) y materializa las cuotas si aún no existen. El UPDATE
// condicional resuelve dos envíos concurrentes: solo uno gana.
func (uc *QuoteStore) MarkAsSent(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	var sent *entity.Quote
	err := uc.txRunner.Run(ctx, func(
		quoteRepo repository.QuoteRepository,
		paymentRepo repository.QuotePaymentRepository,
		_ repository.InvoiceRepository,
	) error {
		q, err := quoteRepo.GetByID(id)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		if !q.Status.CanTransitionTo(entity.QuoteStatusSent) {
			return domain.NewStateError("cotizacion", string(q.Status), "enviar")
		}

		now := time.Now()
		token := uc.tokens.Mint()
		expiresAt := now.AddDate(0, 0, q.ValidityDays)
		ok, err := quoteRepo.MarkAsSent(id, token, now, expiresAt)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewStateError("cotizacion", string(q.Status), "enviar")
		}

		// Materialización única: un segundo envío no crea un segundo plan.
		count, err := paymentRepo.CountByQuote(id)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := uc.planner.MaterializeInTx(paymentRepo, q, now); err != nil {
				return err
			}
		}

		q.Status = entity.QuoteStatusSent
		q.ValidationToken = &token
		q.SentAt = &now
		q.ExpiresAt = &expiresAt
		sent = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.QuoteSent(sent)
	uc.log.Info().Str("quote_id", id).Msg("cotización enviada")
	return toQuoteResponse(sent), nil
}

// MarkAsAccepted transiciona sent -> accepted (acción del cliente en la
// página pública o del operador).
func (uc *QuoteStore) MarkAsAccepted(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	ok, err := uc.quoteRepo.MarkAsAccepted(id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewStateError("cotizacion", string(q.Status), "aceptar")
	}
	q.Status = entity.QuoteStatusAccepted
	q.AcceptedAt = &now
	return toQuoteResponse(q), nil
}

// AcceptByToken acción pública: el cliente acepta desde el enlace.
func (uc *QuoteStore) AcceptByToken(ctx context.Context, token string) (*dto.PublicQuoteResponse, error) {
	q, err := uc.getValidByToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := uc.MarkAsAccepted(ctx, q.ID); err != nil {
		return nil, err
	}
	q.Status = entity.QuoteStatusAccepted
	return toPublicQuoteResponse(q), nil
}

// MarkAsPaid marca la cotización pagada con la referencia del procesador.
// Condicional sobre status <> 'paid': una confirmación repetida no la
// vuelve a aplicar.
func (uc *QuoteStore) MarkAsPaid(ctx context.Context, id, processorRef string, amount decimal.Decimal) (*dto.QuoteResponse, error) {
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	ok, err := uc.quoteRepo.MarkAsPaid(id, processorRef, amount, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewStateError("cotizacion", string(q.Status), "pagar")
	}
	q.Status = entity.QuoteStatusPaid
	q.PaidAt = &now
	q.PaidAmount = amount
	q.ProcessorPaymentRef = processorRef
	return toQuoteResponse(q), nil
}

// UpdateStatus transición directa del operador (rejected, override
// accepted -> paid para pagos fuera del procesador). Enviar exige pasar
// por MarkAsSent porque emite token.
func (uc *QuoteStore) UpdateStatus(ctx context.Context, id, status string) (*dto.QuoteResponse, error) {
	target, okStatus := entity.ParseQuoteStatus(status)
	if !okStatus {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, status)
	}
	if target == entity.QuoteStatusSent {
		return nil, fmt.Errorf("%w: usar la operación de envío para pasar a sent", domain.ErrValidation)
	}
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if !q.Status.CanTransitionTo(target) {
		return nil, domain.NewStateError("cotizacion", string(q.Status), status)
	}
	if target == entity.QuoteStatusPaid {
		return uc.MarkAsPaid(ctx, id, "manual", q.Total)
	}
	if err := uc.quoteRepo.SetStatus(id, target); err != nil {
		return nil, err
	}
	q.Status = target
	if !target.AllowsPublicToken() {
		q.ValidationToken = nil
	}
	return toQuoteResponse(q), nil
}

// Delete elimina la cotización; las cuotas caen en cascada.
func (uc *QuoteStore) Delete(ctx context.Context, id string) error {
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return err
	}
	if q == nil {
		return domain.ErrNotFound
	}
	return uc.quoteRepo.Delete(id)
}

// GetByID obtiene la cotización para el back-office.
func (uc *QuoteStore) GetByID(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	q, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	return toQuoteResponse(q), nil
}

// List lista cotizaciones con paginación.
func (uc *QuoteStore) List(ctx context.Context, limit, offset int) ([]*dto.QuoteResponse, error) {
	list, err := uc.quoteRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.QuoteResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toQuoteResponse(q))
	}
	return out, nil
}

// GetPublicByToken página pública de la cotización: válida mientras el
// token exista y la cotización no haya vencido.
func (uc *QuoteStore) GetPublicByToken(ctx context.Context, token string) (*dto.PublicQuoteResponse, error) {
	q, err := uc.getValidByToken(token)
	if err != nil {
		return nil, err
	}
	return toPublicQuoteResponse(q), nil
}

func (uc *QuoteStore) getValidByToken(token string) (*entity.Quote, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	q, err := uc.quoteRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	// Un token residual fuera de sent/accepted/paid no resuelve.
	if !q.Status.AllowsPublicToken() {
		return nil, domain.ErrNotFound
	}
	if q.IsExpired(time.Now()) {
		return nil, domain.ErrExpired
	}
	return q, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func buildItems(in []dto.QuoteItemRequest) ([]entity.QuoteItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la cotización necesita al menos una línea", domain.ErrValidation)
	}
	items := make([]entity.QuoteItem, 0, len(in))
	for i, it := range in {
		if it.Description == "" {
			return nil, fmt.Errorf("%w: la línea %d no tiene descripción", domain.ErrValidation, i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: la cantidad de la línea %d debe ser mayor que cero", domain.ErrValidation, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: el precio unitario de la línea %d no puede ser negativo", domain.ErrValidation, i+1)
		}
		items = append(items, entity.QuoteItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items, nil
}

func toScheduleEntries(in []dto.ScheduleEntryRequest) []entity.ScheduleEntry {
	out := make([]entity.ScheduleEntry, 0, len(in))
	for _, e := range in {
		out = append(out, entity.ScheduleEntry{Label: e.Label, Percentage: e.Percentage})
	}
	return out
}

func parseEventDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date debe ser AAAA-MM-DD", domain.ErrValidation)
	}
	return &t, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func itemsEqual(a []entity.QuoteItem, b []entity.QuoteItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description ||
			!a[i].Quantity.Equal(b[i].Quantity) ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}

func scheduleEqual(a, b []entity.ScheduleEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label || !a[i].Percentage.Equal(b[i].Percentage) {
			return false
		}
	}
	return true
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func toQuoteResponse(q *entity.Quote) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		ID:             q.ID,
		Number:         q.Number,
		ClientName:     q.ClientName,
		ClientEmail:    q.ClientEmail,
		ClientPhone:    q.ClientPhone,
		EventDate:      fmtDate(q.EventDate),
		EventType:      q.EventType,
		Notes:          q.Notes,
		VATRate:        q.VATRate,
		Subtotal:       q.Subtotal,
		VATAmount:      q.VATAmount,
		Total:          q.Total,
		Status:         string(q.Status),
		ValidityDays:   q.ValidityDays,
		ExpiresAt:      fmtTime(q.ExpiresAt),
		DepositPercent: q.DepositPercent,
		SentAt:         fmtTime(q.SentAt),
		AcceptedAt:     fmtTime(q.AcceptedAt),
		PaidAt:         fmtTime(q.PaidAt),
		CreatedAt:      q.CreatedAt.Format(time.RFC3339),
	}
	if q.ValidationToken != nil {
		resp.ValidationToken = *q.ValidationToken
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, dto.QuoteItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	for _, e := range q.PaymentSchedule {
		resp.PaymentSchedule = append(resp.PaymentSchedule, dto.ScheduleEntryResponse{
			Label:      e.Label,
			Percentage: e.Percentage,
		})
	}
	return resp
}

func toPublicQuoteResponse(q *entity.Quote) *dto.PublicQuoteResponse {
	resp := &dto.PublicQuoteResponse{
		Number:     q.Number,
		ClientName: q.ClientName,
		EventDate:  fmtDate(q.EventDate),
		EventType:  q.EventType,
		VATRate:    q.VATRate,
		Subtotal:   q.Subtotal,
		VATAmount:  q.VATAmount,
		Total:      q.Total,
		Status:     string(q.Status),
		ExpiresAt:  fmtTime(q.ExpiresAt),
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, dto.QuoteItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return resp
}
