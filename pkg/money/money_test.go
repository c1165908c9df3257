package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/decora-eventos/pkg/money"
)

func TestCents(t *testing.T) {
	assert.Equal(t, int64(12050), money.Cents(decimal.RequireFromString("120.50")))
	assert.Equal(t, int64(100), money.Cents(decimal.NewFromInt(1)))
	assert.Equal(t, int64(0), money.Cents(decimal.Zero))
	// Redondea, no trunca
	assert.Equal(t, int64(3334), money.Cents(decimal.RequireFromString("33.335")))
}

func TestFromCents(t *testing.T) {
	assert.True(t, money.FromCents(12050).Equal(decimal.RequireFromString("120.50")))
	assert.True(t, money.FromCents(1).Equal(decimal.RequireFromString("0.01")))
}

func TestFormat(t *testing.T) {
	got := money.Format(decimal.RequireFromString("1234.56"))
	assert.Contains(t, got, "€")
	assert.Contains(t, got, "1.234,56", "formato localizado español")
}
