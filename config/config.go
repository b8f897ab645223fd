package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/bondmarket/internal/domain"
)

// Config es la configuración completa del mercado.
type Config struct {
	Market  MarketConfig  `yaml:"market"`
	Storage StorageConfig `yaml:"storage"`
	Sim     SimConfig     `yaml:"sim"`
	Log     LogConfig     `yaml:"log"`
}

// MarketConfig controla fees y cuentas del mercado.
type MarketConfig struct {
	ProtocolFeeBps uint64 `yaml:"protocol_fee_bps"` // base 10000
	SubjectFeeBps  uint64 `yaml:"subject_fee_bps"`
	Vault          string `yaml:"vault"`           // cuenta custodia de pool + fees
	FeeDestination string `yaml:"fee_destination"` // receptor de protocol fees
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// SimConfig controla el simulador de flujo de trades.
type SimConfig struct {
	Traders      int     `yaml:"traders"`
	TradesPerSec float64 `yaml:"trades_per_sec"`
	MaxTrades    int     `yaml:"max_trades"`
	Funding      uint64  `yaml:"funding"` // saldo inicial por trader
	Seed         int64   `yaml:"seed"`    // 0 = aleatorio
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Los valores del .env sobreescriben los del YAML para las keys
// que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve una configuración sin archivo, solo defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// FeePolicy construye la política de fees validada.
func (c *Config) FeePolicy() (domain.FeePolicy, error) {
	return domain.NewFeePolicy(c.Market.ProtocolFeeBps, c.Market.SubjectFeeBps)
}

// VaultAddress devuelve la cuenta custodia parseada.
func (c *Config) VaultAddress() common.Address {
	return common.HexToAddress(c.Market.Vault)
}

// FeeDestinationAddress devuelve el receptor de fees parseado.
func (c *Config) FeeDestinationAddress() common.Address {
	return common.HexToAddress(c.Market.FeeDestination)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Market.ProtocolFeeBps == 0 {
		cfg.Market.ProtocolFeeBps = domain.DefaultProtocolFeeBps
	}
	if cfg.Market.SubjectFeeBps == 0 {
		cfg.Market.SubjectFeeBps = domain.DefaultSubjectFeeBps
	}
	if cfg.Market.Vault == "" {
		cfg.Market.Vault = "0x000000000000000000000000000000000000Ca4e"
	}
	if cfg.Market.FeeDestination == "" {
		cfg.Market.FeeDestination = "0x0000000000000000000000000000000000000Fee"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "bondmarket.db"
	}
	if cfg.Sim.Traders <= 0 {
		cfg.Sim.Traders = 8
	}
	if cfg.Sim.TradesPerSec <= 0 {
		cfg.Sim.TradesPerSec = 20
	}
	if cfg.Sim.MaxTrades <= 0 {
		cfg.Sim.MaxTrades = 200
	}
	if cfg.Sim.Funding == 0 {
		cfg.Sim.Funding = 50_000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
