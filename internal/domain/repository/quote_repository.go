package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
)

// QuoteRepository puerto de persistencia de cotizaciones. Es el único
// componente que escribe filas de quotes.
//
// Los métodos Mark* son actualizaciones condicionales: el UPDATE lleva el
// estado esperado en el WHERE y devuelven false si ninguna fila coincidió.
// Así dos envíos concurrentes no emiten dos tokens válidos: el perdedor
// de la carrera recibe false y el caso de uso lo convierte en error.
type QuoteRepository interface {
	Create(q *entity.Quote) error
	GetByID(id string) (*entity.Quote, error)
	GetByToken(token string) (*entity.Quote, error)
	List(limit, offset int) ([]*entity.Quote, error)

	// Update reescribe el contenido completo (snapshot de cliente, líneas,
	// totales, plan, estado y token). Los derivados llegan ya recalculados.
	Update(q *entity.Quote) error

	// MarkAsSent: WHERE status IN ('draft','sent'). Reenvíos legales;
	// siempre pisa el token anterior.
	MarkAsSent(id, token string, sentAt, expiresAt time.Time) (bool, error)
	// MarkAsAccepted: WHERE status = 'sent'.
	MarkAsAccepted(id string, at time.Time) (bool, error)
	// MarkAsPaid: WHERE status <> 'paid'. Idempotente ante confirmaciones
	// duplicadas del procesador.
	MarkAsPaid(id, processorRef string, amount decimal.Decimal, at time.Time) (bool, error)
	// SetStatus asigna el estado directamente (transiciones de operador ya
	// validadas por el caso de uso).
	SetStatus(id string, status entity.QuoteStatus) error
	SetCheckoutSession(id, sessionID string) error

	// Delete elimina la cotización; las cuotas caen por cascada (FK).
	Delete(id string) error
}
