package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrInvalidState = errors.New("transición de estado no permitida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrExpired      = errors.New("el enlace ha expirado")
	ErrUpstream     = errors.New("fallo de servicio externo")
)

// StateError transición ilegal con contexto (entidad, estado actual, acción pedida).
// Unwrap devuelve ErrInvalidState para que errors.Is funcione en los handlers.
type StateError struct {
	Entity string // "cotizacion" | "pago"
	From   string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s en estado %q no permite %q", e.Entity, e.From, e.Action)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// NewStateError construye un StateError.
func NewStateError(entity, from, action string) error {
	return &StateError{Entity: entity, From: from, Action: action}
}

// Upstream envuelve un fallo de un servicio externo (procesador de pagos, SMTP)
// conservando el detalle y clasificable con errors.Is(err, ErrUpstream).
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
