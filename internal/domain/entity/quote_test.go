package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de estado de cotización
// ──────────────────────────────────────────────────────────────────────────────

func TestQuoteStatus_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to entity.QuoteStatus
		ok       bool
	}{
		{entity.QuoteStatusDraft, entity.QuoteStatusSent, true},
		{entity.QuoteStatusDraft, entity.QuoteStatusAccepted, false},
		{entity.QuoteStatusDraft, entity.QuoteStatusPaid, false},
		// sent -> sent: el reenvío es legal y revoca el token anterior
		{entity.QuoteStatusSent, entity.QuoteStatusSent, true},
		{entity.QuoteStatusSent, entity.QuoteStatusAccepted, true},
		{entity.QuoteStatusSent, entity.QuoteStatusRejected, true},
		{entity.QuoteStatusSent, entity.QuoteStatusExpired, true},
		// la edición de contenido regresa a draft
		{entity.QuoteStatusSent, entity.QuoteStatusDraft, true},
		{entity.QuoteStatusAccepted, entity.QuoteStatusPaid, true},
		{entity.QuoteStatusAccepted, entity.QuoteStatusDraft, true},
		{entity.QuoteStatusAccepted, entity.QuoteStatusSent, false},
		// terminales: nada sale de ellos
		{entity.QuoteStatusRejected, entity.QuoteStatusDraft, false},
		{entity.QuoteStatusExpired, entity.QuoteStatusSent, false},
		{entity.QuoteStatusPaid, entity.QuoteStatusDraft, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to),
			"transición %s -> %s", c.from, c.to)
	}
}

func TestQuoteStatus_Terminales(t *testing.T) {
	assert.True(t, entity.QuoteStatusRejected.IsTerminal())
	assert.True(t, entity.QuoteStatusExpired.IsTerminal())
	assert.True(t, entity.QuoteStatusPaid.IsTerminal())
	assert.False(t, entity.QuoteStatusDraft.IsTerminal())
	assert.False(t, entity.QuoteStatusSent.IsTerminal())
	assert.False(t, entity.QuoteStatusAccepted.IsTerminal())
}

func TestParseQuoteStatus_RechazaDesconocidos(t *testing.T) {
	_, ok := entity.ParseQuoteStatus("archived")
	assert.False(t, ok)

	st, ok := entity.ParseQuoteStatus("accepted")
	require.True(t, ok)
	assert.Equal(t, entity.QuoteStatusAccepted, st)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de estado de cuota
// ──────────────────────────────────────────────────────────────────────────────

func TestPaymentStatus_Transiciones(t *testing.T) {
	assert.True(t, entity.PaymentStatusPending.CanTransitionTo(entity.PaymentStatusSent))
	assert.True(t, entity.PaymentStatusPending.CanTransitionTo(entity.PaymentStatusCancelled))
	assert.True(t, entity.PaymentStatusSent.CanTransitionTo(entity.PaymentStatusPaid))
	assert.False(t, entity.PaymentStatusSent.CanTransitionTo(entity.PaymentStatusCancelled))
	assert.False(t, entity.PaymentStatusPaid.CanTransitionTo(entity.PaymentStatusPending))
	assert.False(t, entity.PaymentStatusCancelled.CanTransitionTo(entity.PaymentStatusSent))
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales derivados
// ──────────────────────────────────────────────────────────────────────────────

func TestQuote_Recalculate(t *testing.T) {
	q := &entity.Quote{
		Items: []entity.QuoteItem{
			{Description: "Arco de flores", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(30)},
			{Description: "Centros de mesa", Quantity: decimal.NewFromInt(8), UnitPrice: decimal.NewFromInt(5)},
		},
		VATRate: decimal.NewFromInt(20),
	}
	q.Recalculate()

	assert.True(t, q.Items[0].Total.Equal(decimal.NewFromInt(60)), "total de línea = cantidad × precio")
	assert.True(t, q.Items[1].Total.Equal(decimal.NewFromInt(40)))
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", q.Subtotal)
	assert.True(t, q.VATAmount.Equal(decimal.NewFromInt(20)), "iva %s", q.VATAmount)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(120)), "total %s", q.Total)
}

func TestQuote_Recalculate_RedondeaLineas(t *testing.T) {
	q := &entity.Quote{
		Items: []entity.QuoteItem{
			// 3 × 10.333 = 30.999 -> 31.00 al redondear la línea
			{Description: "Guirnaldas", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("10.333")},
		},
		VATRate: decimal.NewFromInt(21),
	}
	q.Recalculate()

	assert.True(t, q.Items[0].Total.Equal(decimal.RequireFromString("31.00")), "línea %s", q.Items[0].Total)
	assert.True(t, q.Subtotal.Equal(decimal.RequireFromString("31.00")))
	// 31.00 × 0.21 = 6.51
	assert.True(t, q.VATAmount.Equal(decimal.RequireFromString("6.51")), "iva %s", q.VATAmount)
	assert.True(t, q.Total.Equal(decimal.RequireFromString("37.51")))
}

func TestQuote_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&entity.Quote{}).IsExpired(now), "sin fecha de vencimiento nunca expira")
	assert.True(t, (&entity.Quote{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&entity.Quote{ExpiresAt: &future}).IsExpired(now))
}
