package payments

import (
	"context"
	"fmt"

	"github.com/tu-usuario/decora-eventos/internal/application/dto"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/internal/domain/repository"
	"github.com/tu-usuario/decora-eventos/internal/domain/schedule"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
	"github.com/tu-usuario/decora-eventos/pkg/money"
)

// BridgeConfig moneda y URLs de retorno por defecto.
type BridgeConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// CheckoutBridge traduce una cuota (o el anticipo legado de la
// cotización) en una sesión de pago del procesador y persiste el id de
// correlación. Sin reintentos: si el procesador falla, el error sube tal
// cual y la fila queda intacta.
type CheckoutBridge struct {
	quoteRepo   repository.QuoteRepository
	paymentRepo repository.QuotePaymentRepository
	client      CheckoutClient
	cfg         BridgeConfig
	log         *logger.Logger
}

// NewCheckoutBridge construye el puente.
func NewCheckoutBridge(
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.QuotePaymentRepository,
	client CheckoutClient,
	cfg BridgeConfig,
	log *logger.Logger,
) *CheckoutBridge {
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &CheckoutBridge{
		quoteRepo:   quoteRepo,
		paymentRepo: paymentRepo,
		client:      client,
		cfg:         cfg,
		log:         log,
	}
}

// CreateCheckoutSession crea la sesión de pago de una cuota.
// Precondiciones en orden, cada una un fallo distinto:
//  1. la cuota existe; 2. está en sent; 3. no tiene pago previo.
func (uc *CheckoutBridge) CreateCheckoutSession(ctx context.Context, paymentID string, in dto.CheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	p, err := uc.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.Status != entity.PaymentStatusSent {
		return nil, domain.NewStateError("pago", string(p.Status), "cobrar")
	}
	if p.PaidAt != nil {
		return nil, domain.NewStateError("pago", string(p.Status), "cobrar de nuevo")
	}

	q, err := uc.quoteRepo.GetByID(p.QuoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}

	sess, err := uc.client.CreateSession(ctx, CheckoutSessionInput{
		AmountCents: money.Cents(p.Amount),
		Currency:    uc.cfg.Currency,
		Description: fmt.Sprintf("%s — %s", q.Number, p.Label),
		SuccessURL:  fallback(in.SuccessURL, uc.cfg.SuccessURL),
		CancelURL:   fallback(in.CancelURL, uc.cfg.CancelURL),
		Metadata: map[string]string{
			"quote_id":      q.ID,
			"quote_number":  q.Number,
			"payment_id":    p.ID,
			"payment_label": p.Label,
		},
	})
	if err != nil {
		return nil, domain.Upstream("crear sesión de pago", err)
	}

	if err := uc.paymentRepo.SetCheckoutSession(p.ID, sess.ID); err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", p.ID).Str("session_id", sess.ID).Msg("sesión de pago creada")
	return &dto.CheckoutSessionResponse{SessionID: sess.ID, RedirectURL: sess.RedirectURL}, nil
}

// CreateCheckoutByToken crea la sesión de pago desde el enlace público:
// resuelve el token a su cuota y delega en CreateCheckoutSession.
func (uc *CheckoutBridge) CreateCheckoutByToken(ctx context.Context, token string, in dto.CheckoutRequest) (*dto.CheckoutSessionResponse, error) {
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
	return uc.CreateCheckoutSession(ctx, p.ID, in)
}

// CreateDepositCheckout camino legado de pago único: cobra el anticipo
// (deposit_percent del total) de una cotización aceptada.
func (uc *CheckoutBridge) CreateDepositCheckout(ctx context.Context, quoteID string, in dto.CheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	q, err := uc.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.Status != entity.QuoteStatusAccepted {
		return nil, domain.NewStateError("cotizacion", string(q.Status), "cobrar anticipo")
	}
	if q.PaidAt != nil {
		return nil, domain.NewStateError("cotizacion", string(q.Status), "cobrar de nuevo")
	}

	amount := schedule.Amount(q.Total, q.DepositPercent)
	sess, err := uc.client.CreateSession(ctx, CheckoutSessionInput{
		AmountCents: money.Cents(amount),
		Currency:    uc.cfg.Currency,
		Description: fmt.Sprintf("%s — anticipo", q.Number),
		SuccessURL:  fallback(in.SuccessURL, uc.cfg.SuccessURL),
		CancelURL:   fallback(in.CancelURL, uc.cfg.CancelURL),
		Metadata: map[string]string{
			"quote_id":     q.ID,
			"quote_number": q.Number,
		},
	})
	if err != nil {
		return nil, domain.Upstream("crear sesión de anticipo", err)
	}

	if err := uc.quoteRepo.SetCheckoutSession(q.ID, sess.ID); err != nil {
		return nil, err
	}
	uc.log.Info().Str("quote_id", q.ID).Str("session_id", sess.ID).Msg("sesión de anticipo creada")
	return &dto.CheckoutSessionResponse{SessionID: sess.ID, RedirectURL: sess.RedirectURL}, nil
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
