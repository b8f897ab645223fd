package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/bondmarket/internal/adapters/treasury"
	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/market"
)

const (
	DefaultTraders      = 8
	DefaultTradesPerSec = 20.0
	DefaultMaxTrades    = 200
	defaultFunding      = 50_000
	maxQuantity         = 3
	sellBias            = 40 // % of attempts that try to sell
)

// Config holds simulation settings.
type Config struct {
	Traders      int
	TradesPerSec float64
	MaxTrades    int
	Funding      uint64 // initial balance per trader
	Seed         int64  // 0 = non-deterministic
}

// Engine drives randomized buy/sell flow against a Market. Every trader is
// also a subject, so first-share mints happen naturally during warmup.
type Engine struct {
	cfg      Config
	market   *market.Market
	treasury *treasury.Treasury
	limiter  *rate.Limiter
	rng      *rand.Rand
	logger   *slog.Logger
}

// Summary is the final state reported after a run.
type Summary struct {
	Trades       int
	Rejected     int
	Volume       uint64 // base price moved across all trades
	Pool         uint64
	AccruedFees  uint64
	Conservation bool
}

// New creates a simulation engine.
func New(cfg Config, mkt *market.Market, t *treasury.Treasury, logger *slog.Logger) *Engine {
	if cfg.Traders <= 0 {
		cfg.Traders = DefaultTraders
	}
	if cfg.TradesPerSec <= 0 {
		cfg.TradesPerSec = DefaultTradesPerSec
	}
	if cfg.MaxTrades <= 0 {
		cfg.MaxTrades = DefaultMaxTrades
	}
	if cfg.Funding == 0 {
		cfg.Funding = defaultFunding
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Engine{
		cfg:      cfg,
		market:   mkt,
		treasury: t,
		limiter:  rate.NewLimiter(rate.Limit(cfg.TradesPerSec), 1),
		rng:      rng,
		logger:   logger,
	}
}

// Run funds the traders, mints every first share and then submits random
// trades until MaxTrades or ctx cancellation.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	traders, err := e.makeTraders()
	if err != nil {
		return nil, err
	}

	// Warmup: cada trader es subject de su propia curva y compra su
	// primera share (la única compra que la restricción permite).
	for _, addr := range traders {
		funds, err := e.treasury.Withdraw(addr, 0)
		if err != nil {
			return nil, fmt.Errorf("sim.Run: warmup withdraw: %w", err)
		}
		if _, err := e.market.BuyShares(ctx, addr, 1, funds, addr); err != nil {
			return nil, fmt.Errorf("sim.Run: first share of %s: %w", addr, err)
		}
	}

	sum := &Summary{Trades: len(traders)}
	for sum.Trades < e.cfg.MaxTrades {
		if err := e.limiter.Wait(ctx); err != nil {
			break // ctx cancelado — cerrar con el resumen de lo hecho
		}

		rec, err := e.step(ctx, traders)
		if err != nil {
			if isRejection(err) {
				sum.Rejected++
				continue
			}
			return nil, err
		}
		sum.Trades++
		sum.Volume += rec.BasePrice
	}

	sum.Pool = e.market.PoolBalance()
	sum.AccruedFees = e.market.AccruedFees()
	sum.Conservation = e.market.CheckConservation()

	e.logger.Info("simulation finished",
		"trades", sum.Trades,
		"rejected", sum.Rejected,
		"volume", sum.Volume,
		"pool", sum.Pool,
		"accrued_fees", sum.AccruedFees,
		"conservation", sum.Conservation,
	)
	return sum, nil
}

// step submits one random trade.
func (e *Engine) step(ctx context.Context, traders []common.Address) (domain.TradeRecord, error) {
	trader := traders[e.rng.Intn(len(traders))]
	subject := traders[e.rng.Intn(len(traders))]
	quantity := uint64(1 + e.rng.Intn(maxQuantity))

	if e.rng.Intn(100) < sellBias {
		return e.market.SellShares(ctx, subject, quantity, trader)
	}

	total, err := e.market.BuyPriceAfterFee(subject, quantity)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	funds, err := e.treasury.Withdraw(trader, total)
	if err != nil {
		// sin saldo: contar como rechazo, no como fallo del run
		return domain.TradeRecord{}, domain.ErrInsufficientPayment
	}
	rec, err := e.market.BuyShares(ctx, subject, quantity, funds, trader)
	if err != nil {
		// devolver el handle no gastado a la cuenta del trader
		if derr := e.treasury.Deposit(funds, trader); derr != nil {
			e.logger.Warn("refund failed", "err", derr, "trader", trader)
		}
		return domain.TradeRecord{}, err
	}
	return rec, nil
}

// makeTraders generates trader identities with fresh secp256k1 keys and
// funds each account from the treasury.
func (e *Engine) makeTraders() ([]common.Address, error) {
	traders := make([]common.Address, 0, e.cfg.Traders)
	for i := 0; i < e.cfg.Traders; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("sim.makeTraders: generate key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if err := e.treasury.Deposit(e.treasury.Mint(e.cfg.Funding), addr); err != nil {
			return nil, fmt.Errorf("sim.makeTraders: fund %s: %w", addr, err)
		}
		traders = append(traders, addr)
	}
	return traders, nil
}

// isRejection separa los fallos de precondición esperables en flujo
// aleatorio de los errores reales de infraestructura.
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrInsufficientPayment) ||
		errors.Is(err, domain.ErrFirstShareRestricted) ||
		errors.Is(err, domain.ErrCannotSellLastShare) ||
		errors.Is(err, domain.ErrInsufficientShares) ||
		errors.Is(err, domain.ErrInsufficientLiquidity)
}
