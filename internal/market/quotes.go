package market

// quotes.go — lecturas puras del mercado. Usan exactamente las mismas
// fórmulas que el camino mutante; llamar dos veces con el estado sin
// cambiar devuelve lo mismo.

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/bondmarket/internal/domain"
)

// CurrentSupply devuelve las shares en circulación del subject.
func (m *Market) CurrentSupply(subject common.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Supply(subject)
}

// SharesBalance devuelve las shares del holder en el subject.
func (m *Market) SharesBalance(subject, holder common.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Balance(subject, holder)
}

// BuyPrice devuelve el precio base de comprar quantity shares ahora.
func (m *Market) BuyPrice(subject common.Address, quantity uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Price(m.ledger.Supply(subject), quantity)
}

// BuyPriceAfterFee devuelve el coste total del comprador: base + fees.
func (m *Market) BuyPriceAfterFee(subject common.Address, quantity uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base, err := domain.Price(m.ledger.Supply(subject), quantity)
	if err != nil {
		return 0, err
	}
	return m.fees.BuyTotal(base)
}

// SellPrice devuelve el precio base de vender quantity shares ahora.
// Falla con ErrInsufficientShares si la supply no llega a quantity.
func (m *Market) SellPrice(subject common.Address, quantity uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	supply := m.ledger.Supply(subject)
	if supply < quantity {
		return 0, domain.ErrInsufficientShares
	}
	return domain.SellPrice(supply, quantity)
}

// SellPriceAfterFee devuelve el neto del vendedor: base − fees.
func (m *Market) SellPriceAfterFee(subject common.Address, quantity uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	supply := m.ledger.Supply(subject)
	if supply < quantity {
		return 0, domain.ErrInsufficientShares
	}
	base, err := domain.SellPrice(supply, quantity)
	if err != nil {
		return 0, err
	}
	return m.fees.SellNet(base), nil
}

// PoolBalance devuelve la reserva actual del pool de liquidez.
func (m *Market) PoolBalance() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Balance()
}

// AccruedFees devuelve los protocol fees acumulados sin retirar.
func (m *Market) AccruedFees() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accrued.Balance()
}

// FeeDestination devuelve la cuenta configurada para recibir protocol fees.
func (m *Market) FeeDestination() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feeDest
}

// CheckConservation verifica la invariante del ledger: para cada subject,
// la suma de balances es igual a su supply. Devuelve false al primer
// subject que no cuadre. Pensado para tests y para el cierre del simulador.
func (m *Market) CheckConservation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.ledger.Subjects() {
		if m.ledger.HolderTotal(s) != m.ledger.Supply(s) {
			return false
		}
	}
	return true
}
