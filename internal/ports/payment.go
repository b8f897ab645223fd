package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Funds es un manejador opaco sobre una cantidad de valor en tránsito.
// El núcleo nunca toca la representación de la moneda, solo cantidades.
type Funds interface {
	// Value devuelve la cantidad que transporta el handle.
	Value() uint64
}

// Payment abstrae el medio de pago que mueve valor dentro y fuera del
// mercado. La implementación es responsable de que el valor se conserve:
// ningún Split/Merge/Deposit crea ni destruye valor.
type Payment interface {
	// Split separa amount del handle y devuelve (tomado, resto).
	// Falla si amount > f.Value() o si el handle no es de este medio.
	Split(f Funds, amount uint64) (taken, remainder Funds, err error)

	// Merge combina dos handles en uno con la suma de ambos valores.
	Merge(a, b Funds) (Funds, error)

	// Deposit consume el handle y acredita su valor a la cuenta dada.
	Deposit(f Funds, account common.Address) error

	// Pay transfiere amount desde una cuenta a otra. Falla si la cuenta
	// origen no tiene saldo suficiente.
	Pay(ctx context.Context, from, to common.Address, amount uint64) error
}
