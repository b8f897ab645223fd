package treasury

// treasury.go — medio de pago en memoria que implementa ports.Payment.
// Lleva cuentas por address y handles de valor en tránsito (Coin). Un Coin
// se consume al usarlo: Split/Merge/Deposit invalidan el handle original,
// así un mismo valor no se puede gastar dos veces.

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/bondmarket/internal/ports"
)

var (
	// ErrInsufficientBalance — la cuenta origen no cubre la transferencia.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSpentFunds — el handle ya fue consumido por Split/Merge/Deposit.
	ErrSpentFunds = errors.New("funds already spent")

	// ErrForeignFunds — el handle no fue emitido por este treasury.
	ErrForeignFunds = errors.New("funds from another treasury")
)

// Coin es un handle de valor en tránsito. Implementa ports.Funds.
type Coin struct {
	t     *Treasury
	value uint64
	spent bool
}

// Value devuelve la cantidad que transporta el handle.
func (c *Coin) Value() uint64 {
	return c.value
}

// Treasury es el medio de pago en memoria.
type Treasury struct {
	mu       sync.Mutex
	accounts map[common.Address]uint64
}

// New crea un treasury sin cuentas.
func New() *Treasury {
	return &Treasury{accounts: make(map[common.Address]uint64)}
}

// Mint crea un handle con valor nuevo. Solo para génesis y funding de
// simulaciones/tests — el core nunca crea valor.
func (t *Treasury) Mint(amount uint64) ports.Funds {
	return &Coin{t: t, value: amount}
}

// BalanceOf devuelve el saldo de la cuenta. 0 si no existe.
func (t *Treasury) BalanceOf(account common.Address) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accounts[account]
}

// Withdraw saca amount del saldo de account a un handle nuevo.
func (t *Treasury) Withdraw(account common.Address, amount uint64) (ports.Funds, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.accounts[account] < amount {
		return nil, fmt.Errorf("treasury.Withdraw: account %s: %w", account, ErrInsufficientBalance)
	}
	t.accounts[account] -= amount
	return &Coin{t: t, value: amount}, nil
}

// Split separa amount del handle: consume f y devuelve (tomado, resto).
func (t *Treasury) Split(f ports.Funds, amount uint64) (ports.Funds, ports.Funds, error) {
	c, err := t.claim(f)
	if err != nil {
		return nil, nil, fmt.Errorf("treasury.Split: %w", err)
	}
	if amount > c.value {
		c.spent = false // el handle sigue siendo válido
		return nil, nil, fmt.Errorf("treasury.Split: take %d from %d: %w", amount, c.value, ErrInsufficientBalance)
	}
	return &Coin{t: t, value: amount}, &Coin{t: t, value: c.value - amount}, nil
}

// Merge combina dos handles en uno, consumiendo ambos.
func (t *Treasury) Merge(a, b ports.Funds) (ports.Funds, error) {
	ca, err := t.claim(a)
	if err != nil {
		return nil, fmt.Errorf("treasury.Merge: %w", err)
	}
	cb, err := t.claim(b)
	if err != nil {
		ca.spent = false
		return nil, fmt.Errorf("treasury.Merge: %w", err)
	}
	if ca.value > math.MaxUint64-cb.value {
		ca.spent, cb.spent = false, false
		return nil, fmt.Errorf("treasury.Merge: value overflow")
	}
	return &Coin{t: t, value: ca.value + cb.value}, nil
}

// Deposit consume el handle y acredita su valor a la cuenta.
func (t *Treasury) Deposit(f ports.Funds, account common.Address) error {
	c, err := t.claim(f)
	if err != nil {
		return fmt.Errorf("treasury.Deposit: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accounts[account] += c.value
	return nil
}

// Pay transfiere amount entre cuentas.
func (t *Treasury) Pay(_ context.Context, from, to common.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.accounts[from] < amount {
		return fmt.Errorf("treasury.Pay: account %s: %w", from, ErrInsufficientBalance)
	}
	t.accounts[from] -= amount
	t.accounts[to] += amount
	return nil
}

// claim valida y marca el handle como gastado.
func (t *Treasury) claim(f ports.Funds) (*Coin, error) {
	c, ok := f.(*Coin)
	if !ok || c.t != t {
		return nil, ErrForeignFunds
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.spent {
		return nil, ErrSpentFunds
	}
	c.spent = true
	return c, nil
}
