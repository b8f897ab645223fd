package domain

import "fmt"

// LiquidityPool es la reserva compartida que respalda los payouts de venta.
// Entra valor con los proceeds netos de cada compra y con depósitos
// voluntarios; sale solo para pagar ventas. Mutado únicamente por el Market.
type LiquidityPool struct {
	balance uint64
}

// NewLiquidityPool crea un pool vacío.
func NewLiquidityPool() *LiquidityPool {
	return &LiquidityPool{}
}

// Balance devuelve el valor actual del pool.
func (p *LiquidityPool) Balance() uint64 {
	return p.balance
}

// Deposit añade amount al pool.
func (p *LiquidityPool) Deposit(amount uint64) error {
	next, err := addU64(p.balance, amount)
	if err != nil {
		return fmt.Errorf("domain.LiquidityPool.Deposit: %w", err)
	}
	p.balance = next
	return nil
}

// Withdraw retira amount. Falla con ErrInsufficientLiquidity si el pool
// no llega; no toca el balance en ese caso.
func (p *LiquidityPool) Withdraw(amount uint64) error {
	if amount > p.balance {
		return ErrInsufficientLiquidity
	}
	p.balance -= amount
	return nil
}

// FeeAccumulator acumula los protocol fees entre retiradas del admin.
// Solo sube con trades y solo baja con Drain.
type FeeAccumulator struct {
	balance uint64
}

// NewFeeAccumulator crea un acumulador a cero.
func NewFeeAccumulator() *FeeAccumulator {
	return &FeeAccumulator{}
}

// Balance devuelve lo acumulado sin retirar.
func (a *FeeAccumulator) Balance() uint64 {
	return a.balance
}

// Accrue añade amount al acumulador.
func (a *FeeAccumulator) Accrue(amount uint64) error {
	next, err := addU64(a.balance, amount)
	if err != nil {
		return fmt.Errorf("domain.FeeAccumulator.Accrue: %w", err)
	}
	a.balance = next
	return nil
}

// Drain devuelve el total acumulado y lo pone a cero. La autorización
// (admin capability) la comprueba el Market, no el acumulador.
func (a *FeeAccumulator) Drain() uint64 {
	out := a.balance
	a.balance = 0
	return out
}
