// Package money helpers de dinero: conversión a unidades menores para el
// procesador de pagos y formato localizado para correos de notificación.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Spanish)

// Cents convierte un monto decimal a centavos enteros (unidades menores
// del procesador). Redondea a 2 decimales antes de desplazar, nunca trunca.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents convierte centavos enteros a decimal con 2 decimales.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// Format representa un monto en euros con separadores localizados,
// ej. "1.234,56 €" (se usa en los correos, nunca en cálculos).
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f €", f)
}
