package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger lleva la contabilidad de shares: supply por subject y balance por
// (subject, holder). Los records se crean lazy en el primer credit y no se
// borran nunca — una supply que vuelve al suelo conserva su entrada.
//
// El Ledger no se sincroniza a sí mismo: el Market es su único mutador y
// serializa todos los accesos bajo su propio lock.
type Ledger struct {
	supply   map[common.Address]uint64
	balances map[common.Address]map[common.Address]uint64 // subject → holder → shares
}

// NewLedger crea un ledger vacío.
func NewLedger() *Ledger {
	return &Ledger{
		supply:   make(map[common.Address]uint64),
		balances: make(map[common.Address]map[common.Address]uint64),
	}
}

// Supply devuelve las shares en circulación del subject. 0 si no existe.
func (l *Ledger) Supply(subject common.Address) uint64 {
	return l.supply[subject]
}

// Balance devuelve las shares del holder en el subject. 0 si no existe.
func (l *Ledger) Balance(subject, holder common.Address) uint64 {
	return l.balances[subject][holder]
}

// Credit incrementa balance del holder y supply del subject en amount,
// creando los records si no existen.
func (l *Ledger) Credit(subject, holder common.Address, amount uint64) error {
	newSupply, err := addU64(l.supply[subject], amount)
	if err != nil {
		return fmt.Errorf("domain.Ledger.Credit: supply of %s: %w", subject, err)
	}

	holders := l.balances[subject]
	if holders == nil {
		holders = make(map[common.Address]uint64)
		l.balances[subject] = holders
	}

	l.supply[subject] = newSupply
	holders[holder] += amount
	return nil
}

// Debit decrementa balance y supply en amount. Falla con
// ErrInsufficientShares si el holder no llega; no toca nada en ese caso.
func (l *Ledger) Debit(subject, holder common.Address, amount uint64) error {
	if l.balances[subject][holder] < amount {
		return ErrInsufficientShares
	}
	l.balances[subject][holder] -= amount
	l.supply[subject] -= amount
	return nil
}

// Subjects devuelve los subjects con record de supply, en orden arbitrario.
func (l *Ledger) Subjects() []common.Address {
	out := make([]common.Address, 0, len(l.supply))
	for s := range l.supply {
		out = append(out, s)
	}
	return out
}

// HolderTotal suma todos los balances de un subject. Tras cada operación
// del Market debe coincidir exactamente con Supply(subject) — la invariante
// de conservación del ledger.
func (l *Ledger) HolderTotal(subject common.Address) uint64 {
	var total uint64
	for _, b := range l.balances[subject] {
		total += b
	}
	return total
}
