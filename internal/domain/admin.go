package domain

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// AdminCap es la credencial singleton que autoriza las operaciones
// privilegiadas del Market (retirar protocol fees, cambiar el destino).
// La posesión del valor ES la autorización: quien tenga la cap puede
// ejercerla o transferirla, no hay estado global de permisos.
type AdminCap struct {
	secret string
}

// NewAdminCap emite una capability nueva. Solo el constructor del Market
// debería llamarla; el Market retiene una copia para comparar.
func NewAdminCap() AdminCap {
	return AdminCap{secret: uuid.New().String()}
}

// Matches compara dos capabilities en tiempo constante.
func (c AdminCap) Matches(other AdminCap) bool {
	return subtle.ConstantTimeCompare([]byte(c.secret), []byte(other.secret)) == 1
}
