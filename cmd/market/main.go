package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/bondmarket/config"
	"github.com/alejandrodnm/bondmarket/internal/adapters/notify"
	"github.com/alejandrodnm/bondmarket/internal/adapters/storage"
	"github.com/alejandrodnm/bondmarket/internal/adapters/treasury"
	"github.com/alejandrodnm/bondmarket/internal/application/sim"
	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/market"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	history := flag.Bool("history", false, "print stored trade history and exit")
	subjects := flag.Bool("subjects", false, "print per-subject snapshots and exit")
	quote := flag.String("quote", "", "subject address: print buy/sell quotes from the stored snapshot and exit")
	qty := flag.Uint64("qty", 1, "quantity for -quote")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Sin archivo de config se arranca con defaults; cualquier otro
		// error de carga sí es fatal.
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *history:
		records, err := store.History(ctx, time.Time{}, time.Now().UTC())
		if err != nil {
			slog.Error("failed to read history", "err", err)
			os.Exit(1)
		}
		console.PrintHistory(records)
		return

	case *subjects:
		snaps, err := store.Subjects(ctx)
		if err != nil {
			slog.Error("failed to read subjects", "err", err)
			os.Exit(1)
		}
		console.PrintSubjects(snaps)
		return

	case *quote != "":
		runQuote(ctx, cfg, store, common.HexToAddress(*quote), *qty)
		return
	}

	runSim(ctx, cfg, store, console)
}

// runSim monta el mercado completo y lo somete a flujo aleatorio.
func runSim(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, console *notify.Console) {
	fees, err := cfg.FeePolicy()
	if err != nil {
		slog.Error("invalid fee policy", "err", err)
		os.Exit(1)
	}

	bank := treasury.New()
	mkt, adminCap := market.New(market.Config{
		Fees:           fees,
		Vault:          cfg.VaultAddress(),
		FeeDestination: cfg.FeeDestinationAddress(),
	}, bank, store, console, slog.Default())

	slog.Info("bondmarket starting",
		"protocol_fee_bps", cfg.Market.ProtocolFeeBps,
		"subject_fee_bps", cfg.Market.SubjectFeeBps,
		"traders", cfg.Sim.Traders,
		"max_trades", cfg.Sim.MaxTrades,
		"dsn", cfg.Storage.DSN,
	)

	engine := sim.New(sim.Config{
		Traders:      cfg.Sim.Traders,
		TradesPerSec: cfg.Sim.TradesPerSec,
		MaxTrades:    cfg.Sim.MaxTrades,
		Funding:      cfg.Sim.Funding,
		Seed:         cfg.Sim.Seed,
	}, mkt, bank, slog.Default())

	summary, err := engine.Run(ctx)
	if err != nil {
		slog.Error("simulation failed", "err", err)
		os.Exit(1)
	}
	if !summary.Conservation {
		slog.Error("conservation violated after run")
		os.Exit(1)
	}

	// Cierre: el admin retira los protocol fees acumulados.
	withdrawn, err := mkt.WithdrawProtocolFees(ctx, adminCap)
	if err != nil {
		slog.Error("fee withdrawal failed", "err", err)
		os.Exit(1)
	}
	slog.Info("bondmarket stopped cleanly",
		"trades", summary.Trades,
		"volume", summary.Volume,
		"fees_withdrawn", withdrawn,
		"fee_destination_balance", bank.BalanceOf(cfg.FeeDestinationAddress()),
	)
}

// runQuote imprime los precios actuales de un subject usando la supply del
// snapshot persistido. Solo lectura: las fórmulas son las mismas que usa
// el camino mutante.
func runQuote(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, subject common.Address, quantity uint64) {
	fees, err := cfg.FeePolicy()
	if err != nil {
		slog.Error("invalid fee policy", "err", err)
		os.Exit(1)
	}

	snaps, err := store.Subjects(ctx)
	if err != nil {
		slog.Error("failed to read subjects", "err", err)
		os.Exit(1)
	}
	var supply uint64
	for _, snap := range snaps {
		if snap.Subject == subject {
			supply = snap.Supply
			break
		}
	}

	buyBase, err := domain.Price(supply, quantity)
	if err != nil {
		slog.Error("quote failed", "err", err)
		os.Exit(1)
	}
	buyTotal, err := fees.BuyTotal(buyBase)
	if err != nil {
		slog.Error("quote failed", "err", err)
		os.Exit(1)
	}

	attrs := []any{
		"subject", subject.Hex(),
		"supply", supply,
		"quantity", quantity,
		"buy_price", buyBase,
		"buy_after_fee", buyTotal,
	}
	if supply >= quantity {
		sellBase, err := domain.SellPrice(supply, quantity)
		if err != nil {
			slog.Error("quote failed", "err", err)
			os.Exit(1)
		}
		attrs = append(attrs, "sell_price", sellBase, "sell_after_fee", fees.SellNet(sellBase))
	}
	slog.Info("quote", attrs...)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
