package market

// market.go — el único componente expuesto a los callers. Orquesta curva,
// fees, ledger y pool para ejecutar compras/ventas y las operaciones
// administrativas. Cada operación es una transición atómica: se validan
// todas las precondiciones y se mueve el pago antes de tocar el estado
// propio, así un fallo nunca deja un commit parcial.

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/ports"
)

// Config son los parámetros inmutables del mercado.
type Config struct {
	// Fees es la política de fees aplicada a cada trade.
	Fees domain.FeePolicy

	// Vault es la cuenta del medio de pago donde el mercado custodia el
	// pool de liquidez y los protocol fees sin retirar.
	Vault common.Address

	// FeeDestination recibe los protocol fees al retirarlos. Modificable
	// después con la admin cap.
	FeeDestination common.Address
}

// Market es el market maker de bonding curve. Posee en exclusiva el ledger,
// el pool y el acumulador de fees; ningún otro componente los muta.
type Market struct {
	mu sync.Mutex

	fees    domain.FeePolicy
	ledger  *domain.Ledger
	pool    *domain.LiquidityPool
	accrued *domain.FeeAccumulator

	payment  ports.Payment
	store    ports.TradeStore // opcional
	notifier ports.Notifier   // opcional

	vault   common.Address
	feeDest common.Address
	admin   domain.AdminCap

	logger *slog.Logger
}

// New crea un mercado vacío y emite su admin capability. La cap devuelta
// es la única credencial que autoriza retirar fees y cambiar el destino;
// quien la reciba puede transferirla pasándosela a otro.
func New(cfg Config, payment ports.Payment, store ports.TradeStore, notifier ports.Notifier, logger *slog.Logger) (*Market, domain.AdminCap) {
	if logger == nil {
		logger = slog.Default()
	}
	adminCap := domain.NewAdminCap()
	return &Market{
		fees:     cfg.Fees,
		ledger:   domain.NewLedger(),
		pool:     domain.NewLiquidityPool(),
		accrued:  domain.NewFeeAccumulator(),
		payment:  payment,
		store:    store,
		notifier: notifier,
		vault:    cfg.Vault,
		feeDest:  cfg.FeeDestination,
		admin:    adminCap,
		logger:   logger,
	}, adminCap
}

// BuyShares compra quantity shares del subject para buyer, pagando con
// funds. El exceso de pago vuelve a la cuenta del buyer sin gastar.
// Precondiciones: solo el subject puede comprar su primera share
// (ErrFirstShareRestricted) y el pago debe cubrir base + fees
// (ErrInsufficientPayment).
func (m *Market) BuyShares(ctx context.Context, subject common.Address, quantity uint64, funds ports.Funds, buyer common.Address) (domain.TradeRecord, error) {
	rec, err := m.buy(ctx, subject, quantity, funds, buyer)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	m.emit(ctx, rec)
	return rec, nil
}

func (m *Market) buy(ctx context.Context, subject common.Address, quantity uint64, funds ports.Funds, buyer common.Address) (domain.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	supply := m.ledger.Supply(subject)
	if supply == 0 && buyer != subject {
		return domain.TradeRecord{}, domain.ErrFirstShareRestricted
	}

	base, err := domain.Price(supply, quantity)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	pfee, sfee := m.fees.Fees(base)
	total, err := m.fees.BuyTotal(base)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	if funds.Value() < total {
		return domain.TradeRecord{}, domain.ErrInsufficientPayment
	}

	// Prechecks de overflow sobre los contadores propios: tras mover el
	// pago ya no puede fallar nada del estado interno.
	if quantity > math.MaxUint64-supply ||
		base > math.MaxUint64-m.pool.Balance() ||
		pfee > math.MaxUint64-m.accrued.Balance() {
		return domain.TradeRecord{}, domain.ErrArithmeticOverflow
	}

	// Mover el valor primero. El vault recibe el total; el resto del
	// handle vuelve al buyer sin gastar.
	taken, remainder, err := m.payment.Split(funds, total)
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("market.BuyShares: split payment: %w", err)
	}
	if err := m.payment.Deposit(taken, m.vault); err != nil {
		return domain.TradeRecord{}, fmt.Errorf("market.BuyShares: deposit to vault: %w", err)
	}
	if err := m.payment.Deposit(remainder, buyer); err != nil {
		return domain.TradeRecord{}, fmt.Errorf("market.BuyShares: return excess: %w", err)
	}
	// El subject fee sale del vault directo al subject; el vault acaba de
	// recibir total ≥ sfee, así que este pago no puede fallar por saldo.
	if sfee > 0 {
		if err := m.payment.Pay(ctx, m.vault, subject, sfee); err != nil {
			return domain.TradeRecord{}, fmt.Errorf("market.BuyShares: pay subject fee: %w", err)
		}
	}

	// Commit del estado propio — ya prechequeado, no puede fallar.
	if err := m.ledger.Credit(subject, buyer, quantity); err != nil {
		return domain.TradeRecord{}, err
	}
	if err := m.pool.Deposit(base); err != nil {
		return domain.TradeRecord{}, err
	}
	if err := m.accrued.Accrue(pfee); err != nil {
		return domain.TradeRecord{}, err
	}

	return domain.NewTradeRecord(buyer, subject, domain.SideBuy, quantity, base, pfee, sfee, supply+quantity), nil
}

// SellShares vende quantity shares del subject desde seller. El neto
// (base − fees) se paga al seller desde el pool. Precondiciones: el subject
// debe existir y el seller tener las shares (ErrInsufficientShares), la
// última share no se vende nunca (ErrCannotSellLastShare) y el pool debe
// cubrir el precio base (ErrInsufficientLiquidity).
func (m *Market) SellShares(ctx context.Context, subject common.Address, quantity uint64, seller common.Address) (domain.TradeRecord, error) {
	rec, err := m.sell(ctx, subject, quantity, seller)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	m.emit(ctx, rec)
	return rec, nil
}

func (m *Market) sell(ctx context.Context, subject common.Address, quantity uint64, seller common.Address) (domain.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	supply := m.ledger.Supply(subject)
	if supply == 0 {
		return domain.TradeRecord{}, domain.ErrInsufficientShares
	}
	// Estricto: vender quantity == supply dejaría la curva sin ancla.
	if quantity >= supply {
		return domain.TradeRecord{}, domain.ErrCannotSellLastShare
	}
	if m.ledger.Balance(subject, seller) < quantity {
		return domain.TradeRecord{}, domain.ErrInsufficientShares
	}

	// Mismo rango de niveles que costó comprarlas, evaluado en el extremo
	// inferior: precio de venta y de compra son simétricos para el mismo
	// rango de supply.
	base, err := domain.SellPrice(supply, quantity)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	pfee, sfee := m.fees.Fees(base)
	net := m.fees.SellNet(base)

	if m.pool.Balance() < base {
		return domain.TradeRecord{}, domain.ErrInsufficientLiquidity
	}
	if pfee > math.MaxUint64-m.accrued.Balance() {
		return domain.TradeRecord{}, domain.ErrArithmeticOverflow
	}

	// Payouts desde el vault. Con pool ≥ base el vault cubre net + sfee.
	if net > 0 {
		if err := m.payment.Pay(ctx, m.vault, seller, net); err != nil {
			return domain.TradeRecord{}, fmt.Errorf("market.SellShares: pay seller: %w", err)
		}
	}
	if sfee > 0 {
		if err := m.payment.Pay(ctx, m.vault, subject, sfee); err != nil {
			return domain.TradeRecord{}, fmt.Errorf("market.SellShares: pay subject fee: %w", err)
		}
	}

	if err := m.ledger.Debit(subject, seller, quantity); err != nil {
		return domain.TradeRecord{}, err
	}
	if err := m.pool.Withdraw(base); err != nil {
		return domain.TradeRecord{}, err
	}
	if err := m.accrued.Accrue(pfee); err != nil {
		return domain.TradeRecord{}, err
	}

	return domain.NewTradeRecord(seller, subject, domain.SideSell, quantity, base, pfee, sfee, supply-quantity), nil
}

// AddLiquidity deposita funds en el pool. Sin restricciones: cualquiera
// puede reforzar la reserva que respalda las ventas.
func (m *Market) AddLiquidity(ctx context.Context, funds ports.Funds) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	amount := funds.Value()
	if amount > math.MaxUint64-m.pool.Balance() {
		return domain.ErrArithmeticOverflow
	}
	if err := m.payment.Deposit(funds, m.vault); err != nil {
		return fmt.Errorf("market.AddLiquidity: deposit to vault: %w", err)
	}
	return m.pool.Deposit(amount)
}

// WithdrawProtocolFees drena el acumulador de protocol fees y paga el
// total al destino configurado. Requiere la admin cap del mercado.
// Devuelve la cantidad retirada.
func (m *Market) WithdrawProtocolFees(ctx context.Context, adminCap domain.AdminCap) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.admin.Matches(adminCap) {
		return 0, domain.ErrUnauthorized
	}

	amount := m.accrued.Balance()
	if amount == 0 {
		return 0, nil
	}
	if err := m.payment.Pay(ctx, m.vault, m.feeDest, amount); err != nil {
		return 0, fmt.Errorf("market.WithdrawProtocolFees: pay destination: %w", err)
	}
	m.accrued.Drain()

	m.logger.Info("protocol fees withdrawn", "amount", amount, "destination", m.feeDest)
	return amount, nil
}

// UpdateFeeDestination cambia la cuenta que recibe los protocol fees.
// Requiere la admin cap; es solo un cambio de metadata.
func (m *Market) UpdateFeeDestination(adminCap domain.AdminCap, dest common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.admin.Matches(adminCap) {
		return domain.ErrUnauthorized
	}
	m.feeDest = dest
	return nil
}

// emit entrega el record confirmado a storage y notifier. Fire-and-forget:
// un fallo aquí se loggea pero nunca revierte el trade ya commiteado.
func (m *Market) emit(ctx context.Context, rec domain.TradeRecord) {
	if m.store != nil {
		if err := m.store.SaveTrade(ctx, rec); err != nil {
			m.logger.Warn("trade store failed", "err", err, "trade", rec.ID)
		}
	}
	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, rec); err != nil {
			m.logger.Warn("notifier failed", "err", err, "trade", rec.ID)
		}
	}
}
