// Package tokens emite los tokens de validación de los enlaces públicos.
package tokens

import "github.com/google/uuid"

// UUIDIssuer emite tokens opacos: UUID v4 con aleatoriedad de
// crypto/rand (122 bits), representados como string. El token es la
// única autorización de la página pública, así que no puede ser
// adivinable ni derivable del id de la entidad.
type UUIDIssuer struct{}

// NewUUIDIssuer construye el emisor.
func NewUUIDIssuer() *UUIDIssuer {
	return &UUIDIssuer{}
}

// Mint genera un token nuevo. Los tokens nunca se reutilizan: quien
// guarda el token emitido pisa el anterior y revoca el enlace viejo.
func (i *UUIDIssuer) Mint() string {
	return uuid.New().String()
}
