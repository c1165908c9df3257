// Package stripe adaptador del procesador de pagos (Stripe Checkout).
package stripe

import (
	"context"

	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/tu-usuario/decora-eventos/internal/application/payments"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
)

var _ payments.CheckoutClient = (*CheckoutClient)(nil)

// CheckoutClient crea sesiones de Stripe Checkout. El cliente se
// construye una vez al arranque y se inyecta, nunca uno nuevo por
// llamada ni una API key global.
type CheckoutClient struct {
	api *client.API
	log *logger.Logger
}

// NewCheckoutClient construye el adaptador con la API key de la cuenta.
func NewCheckoutClient(apiKey string, log *logger.Logger) *CheckoutClient {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &CheckoutClient{api: api, log: log}
}

// CreateSession crea una sesión de pago único con el monto en unidades
// menores y la metadata de correlación. Sin reintentos: el error del
// procesador sube tal cual.
func (c *CheckoutClient) CreateSession(ctx context.Context, in payments.CheckoutSessionInput) (*payments.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(in.SuccessURL),
		CancelURL:  stripeapi.String(in.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Quantity: stripeapi.Int64(1),
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(in.Currency),
					UnitAmount: stripeapi.Int64(in.AmountCents),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(in.Description),
					},
				},
			},
		},
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("session_id", sess.ID).Msg("sesión de Stripe creada")
	return &payments.CheckoutSession{ID: sess.ID, RedirectURL: sess.URL}, nil
}
