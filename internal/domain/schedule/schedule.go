// Package schedule contiene la lógica pura del plan de pagos: validación
// del reparto porcentual y cálculo de montos por cuota (sin dependencias
// de persistencia).
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/domain"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Default reparto canónico 30/70: anticipo para reservar la fecha y saldo
// antes del evento.
func Default() []entity.ScheduleEntry {
	return []entity.ScheduleEntry{
		{Label: "Anticipo", Percentage: decimal.NewFromInt(30)},
		{Label: "Saldo", Percentage: decimal.NewFromInt(70)},
	}
}

// Validate verifica el plan: no vacío, porcentajes positivos y suma
// exactamente 100. Se aplica en el servidor, no solo en la UI.
func Validate(entries []entity.ScheduleEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: el plan de pagos no puede estar vacío", domain.ErrValidation)
	}
	sum := decimal.Zero
	for i, e := range entries {
		if !e.Percentage.IsPositive() {
			return fmt.Errorf("%w: porcentaje de la cuota %d debe ser mayor que cero", domain.ErrValidation, i+1)
		}
		sum = sum.Add(e.Percentage)
	}
	if !sum.Equal(hundred) {
		return fmt.Errorf("%w: los porcentajes del plan suman %s, deben sumar 100", domain.ErrValidation, sum.String())
	}
	return nil
}

// SplitAmounts reparte el total entre las cuotas: round(total × pct/100, 2)
// por cuota, y la última absorbe el residuo para que la suma de montos sea
// exactamente el total (ningún centavo se pierde al redondear).
func SplitAmounts(total decimal.Decimal, entries []entity.ScheduleEntry) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(entries))
	accumulated := decimal.Zero
	for i, e := range entries {
		if i == len(entries)-1 {
			amounts[i] = total.Sub(accumulated)
			break
		}
		amounts[i] = total.Mul(e.Percentage).Div(hundred).Round(2)
		accumulated = accumulated.Add(amounts[i])
	}
	return amounts
}

// Amount monto de una sola cuota según su porcentaje (para recalcular
// cuotas pending cuando cambia el total de la cotización).
func Amount(total, percentage decimal.Decimal) decimal.Decimal {
	return total.Mul(percentage).Div(hundred).Round(2)
}
