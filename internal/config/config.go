// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ivoros/chainarb/internal/apperror"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig                `mapstructure:"app"`
	Networks  map[string]NetworkConfig `mapstructure:"networks"`
	Oracle    OracleConfig             `mapstructure:"oracle"`
	Exchanges ExchangesConfig          `mapstructure:"exchanges"`
	Bridges   BridgesConfig            `mapstructure:"bridges"`
	Arbitrage ArbitrageConfig          `mapstructure:"arbitrage"`
	Execution ExecutionConfig          `mapstructure:"execution"`
	Wallet    WalletConfig             `mapstructure:"wallet"`
	Ledger    LedgerConfig             `mapstructure:"ledger"`
	Telemetry TelemetryConfig          `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// NetworkConfig holds per-chain node configuration.
// The map key in Config.Networks is the network name ("ethereum", "arbitrum").
type NetworkConfig struct {
	ChainID        uint64        `mapstructure:"chain_id"`
	HTTPURL        string        `mapstructure:"http_url"`
	WebSocketURL   string        `mapstructure:"websocket_url"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// OracleConfig holds price oracle configuration.
type OracleConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StaleAfter   time.Duration `mapstructure:"stale_after"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	RatePerSec   float64       `mapstructure:"rate_per_sec"`
	RateBurst    int           `mapstructure:"rate_burst"`
	StreamEnable bool          `mapstructure:"stream_enable"`
	StreamURL    string        `mapstructure:"stream_url"`
}

// ExchangesConfig holds DEX venue configuration.
type ExchangesConfig struct {
	// Venues lists quote sources in fallback order.
	Venues      []string        `mapstructure:"venues"`
	SlippageBps float64         `mapstructure:"slippage_bps"`
	// FeeBps is the swap fee charged by the simulated venue.
	FeeBps    float64         `mapstructure:"fee_bps"`
	Simulate  bool            `mapstructure:"simulate"`
	Uniswap   UniswapConfig   `mapstructure:"uniswap"`
	Sushiswap SushiswapConfig `mapstructure:"sushiswap"`
}

// FeeBpsDecimal returns the simulated swap fee in bps as decimal.Decimal.
func (c *ExchangesConfig) FeeBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FeeBps)
}

// SlippageBpsDecimal returns the slippage tolerance in bps as decimal.Decimal.
func (c *ExchangesConfig) SlippageBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SlippageBps)
}

// UniswapConfig holds Uniswap V3 contract addresses.
type UniswapConfig struct {
	QuoterAddress  string `mapstructure:"quoter_address"`
	RouterAddress  string `mapstructure:"router_address"`
	DefaultFeeTier int    `mapstructure:"default_fee_tier"`
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *UniswapConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// RouterAddressHex returns the router address as common.Address.
func (c *UniswapConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// SushiswapConfig holds Sushiswap router addresses.
type SushiswapConfig struct {
	RouterAddress string `mapstructure:"router_address"`
}

// RouterAddressHex returns the router address as common.Address.
func (c *SushiswapConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// BridgesConfig holds cross-chain bridge configuration.
type BridgesConfig struct {
	// Providers lists bridge providers in fallback order.
	Providers    []string           `mapstructure:"providers"`
	Socket       SocketBridgeConfig `mapstructure:"socket"`
	Across       AcrossBridgeConfig `mapstructure:"across"`
	FeeBps       float64            `mapstructure:"fee_bps"`
	PollInterval time.Duration      `mapstructure:"poll_interval"`
	Timeout      time.Duration      `mapstructure:"timeout"`
	Simulate     bool               `mapstructure:"simulate"`
}

// SocketBridgeConfig holds Socket API settings.
type SocketBridgeConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AcrossBridgeConfig holds Across API settings.
type AcrossBridgeConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FeeBpsDecimal returns the bridge fee in bps as decimal.Decimal.
func (c *BridgesConfig) FeeBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FeeBps)
}

// ArbitrageConfig holds opportunity scanning configuration.
type ArbitrageConfig struct {
	// Symbols are the tokens scanned for cross-chain spreads.
	Symbols []string `mapstructure:"symbols"`
	// ReferenceSymbol denominates profit and trade sizing ("USDC").
	ReferenceSymbol string  `mapstructure:"reference_symbol"`
	MinProfit       float64 `mapstructure:"min_profit"`
	// DeviationPct is the minimum absolute price spread, in percent,
	// for a network pair to be considered at all.
	DeviationPct float64       `mapstructure:"deviation_pct"`
	MinTradeSize float64       `mapstructure:"min_trade_size"`
	MaxTradeSize float64       `mapstructure:"max_trade_size"`
	SizingCoeff  float64       `mapstructure:"sizing_coefficient"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	// AutoExecute lets the scan loop trade the best opportunity on its
	// own instead of waiting for an operator.
	AutoExecute bool `mapstructure:"auto_execute"`
	TUIMode         bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// MinProfitDecimal returns the profit threshold as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfit)
}

// DeviationPctDecimal returns the spread threshold as decimal.Decimal.
func (c *ArbitrageConfig) DeviationPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DeviationPct)
}

// MinTradeSizeDecimal returns the trade size floor as decimal.Decimal.
func (c *ArbitrageConfig) MinTradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinTradeSize)
}

// MaxTradeSizeDecimal returns the trade size ceiling as decimal.Decimal.
func (c *ArbitrageConfig) MaxTradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxTradeSize)
}

// SizingCoeffDecimal returns the sizing coefficient as decimal.Decimal.
func (c *ArbitrageConfig) SizingCoeffDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SizingCoeff)
}

// ExecutionConfig holds trade execution configuration.
type ExecutionConfig struct {
	FlashLoanEnabled bool          `mapstructure:"flash_loan_enabled"`
	FlashLoanFeeBps  float64       `mapstructure:"flash_loan_fee_bps"`
	MaxExposure      float64       `mapstructure:"max_exposure"`
	StepTimeout      time.Duration `mapstructure:"step_timeout"`
	DryRun           bool          `mapstructure:"dry_run"`
}

// MaxExposureDecimal returns the wallet exposure cap as decimal.Decimal.
func (c *ExecutionConfig) MaxExposureDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxExposure)
}

// FlashLoanFeeBpsDecimal returns the flash loan fee in bps as decimal.Decimal.
func (c *ExecutionConfig) FlashLoanFeeBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FlashLoanFeeBps)
}

// WalletConfig holds wallet configuration.
type WalletConfig struct {
	Address string `mapstructure:"address"`
	// PrivateKey is the hex-encoded signing key. Required only when
	// execution.dry_run is false.
	PrivateKey     string  `mapstructure:"private_key"`
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// AddressHex returns the wallet address as common.Address.
func (c *WalletConfig) AddressHex() common.Address {
	return common.HexToAddress(c.Address)
}

// LedgerConfig holds trade ledger persistence configuration.
type LedgerConfig struct {
	// Backend selects the store: "file" or "postgres".
	Backend     string `mapstructure:"backend"`
	FilePath    string `mapstructure:"file_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	// StartingBalance seeds the running balance in reference units.
	StartingBalance float64 `mapstructure:"starting_balance"`
}

// StartingBalanceDecimal returns the seed balance as decimal.Decimal.
func (c *LedgerConfig) StartingBalanceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.StartingBalance)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
				apperror.WithMessage("failed to read config file"))
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithMessage("failed to unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Networks (the two default networks; others come from the config file)
	v.BindEnv("networks.ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("networks.ethereum.websocket_url", "ARB_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("networks.arbitrum.http_url", "ARB_ARBITRUM_HTTP_URL", "ARBITRUM_HTTP_URL")
	v.BindEnv("networks.arbitrum.websocket_url", "ARB_ARBITRUM_WS_URL", "ARBITRUM_WS_URL")

	// Oracle
	v.BindEnv("oracle.base_url", "ARB_ORACLE_URL", "ORACLE_URL")
	v.BindEnv("oracle.stream_url", "ARB_ORACLE_STREAM_URL", "ORACLE_STREAM_URL")

	// Exchanges
	v.BindEnv("exchanges.venues", "ARB_EXCHANGE_VENUES")
	v.BindEnv("exchanges.slippage_bps", "ARB_SLIPPAGE_BPS")
	v.BindEnv("exchanges.simulate", "ARB_EXCHANGE_SIMULATE")

	// Bridges
	v.BindEnv("bridges.providers", "ARB_BRIDGE_PROVIDERS")
	v.BindEnv("bridges.socket.base_url", "ARB_SOCKET_URL", "SOCKET_URL")
	v.BindEnv("bridges.socket.api_key", "ARB_SOCKET_API_KEY", "SOCKET_API_KEY")
	v.BindEnv("bridges.across.base_url", "ARB_ACROSS_URL", "ACROSS_URL")
	v.BindEnv("bridges.timeout", "ARB_BRIDGE_TIMEOUT")

	// Arbitrage
	v.BindEnv("arbitrage.symbols", "ARB_SYMBOLS")
	v.BindEnv("arbitrage.min_profit", "ARB_MIN_PROFIT")
	v.BindEnv("arbitrage.sizing_coefficient", "ARB_SIZING_COEFFICIENT")
	v.BindEnv("arbitrage.scan_interval", "ARB_SCAN_INTERVAL")

	// Execution
	v.BindEnv("execution.flash_loan_enabled", "ARB_FLASH_LOAN_ENABLED")
	v.BindEnv("execution.max_exposure", "ARB_MAX_EXPOSURE")
	v.BindEnv("execution.dry_run", "ARB_DRY_RUN")

	// Wallet
	v.BindEnv("wallet.address", "ARB_WALLET_ADDRESS", "WALLET_ADDRESS")
	v.BindEnv("wallet.private_key", "ARB_WALLET_PRIVATE_KEY", "WALLET_PRIVATE_KEY")

	// Ledger
	v.BindEnv("ledger.backend", "ARB_LEDGER_BACKEND")
	v.BindEnv("ledger.file_path", "ARB_LEDGER_FILE")
	v.BindEnv("ledger.postgres_dsn", "ARB_LEDGER_POSTGRES_DSN", "DATABASE_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "chainarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Network defaults
	v.SetDefault("networks.ethereum.chain_id", 1)
	v.SetDefault("networks.ethereum.max_reconnects", 0) // infinite
	v.SetDefault("networks.ethereum.initial_backoff", "1s")
	v.SetDefault("networks.ethereum.max_backoff", "30s")
	v.SetDefault("networks.arbitrum.chain_id", 42161)
	v.SetDefault("networks.arbitrum.max_reconnects", 0)
	v.SetDefault("networks.arbitrum.initial_backoff", "1s")
	v.SetDefault("networks.arbitrum.max_backoff", "30s")

	// Oracle defaults
	v.SetDefault("oracle.base_url", "https://api.diadata.org")
	v.SetDefault("oracle.timeout", "5s")
	v.SetDefault("oracle.stale_after", "30s")
	v.SetDefault("oracle.cache_ttl", "2s")
	v.SetDefault("oracle.rate_per_sec", 10)
	v.SetDefault("oracle.rate_burst", 5)
	v.SetDefault("oracle.stream_enable", false)

	// Exchange defaults (Uniswap V3 mainnet, Sushiswap V2 router)
	v.SetDefault("exchanges.venues", []string{"uniswap", "sushiswap"})
	v.SetDefault("exchanges.slippage_bps", 50)
	v.SetDefault("exchanges.fee_bps", 30) // 0.3%, mirrors the V3 default tier
	v.SetDefault("exchanges.simulate", true)
	v.SetDefault("exchanges.uniswap.quoter_address", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("exchanges.uniswap.router_address", "0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45")
	v.SetDefault("exchanges.uniswap.default_fee_tier", 3000) // 0.3%
	v.SetDefault("exchanges.sushiswap.router_address", "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F")

	// Bridge defaults
	v.SetDefault("bridges.providers", []string{"socket", "across"})
	v.SetDefault("bridges.socket.base_url", "https://api.socket.tech")
	v.SetDefault("bridges.across.base_url", "https://app.across.to")
	v.SetDefault("bridges.fee_bps", 4)
	v.SetDefault("bridges.poll_interval", "2s")
	v.SetDefault("bridges.timeout", "90s")
	v.SetDefault("bridges.simulate", true)

	// Arbitrage defaults
	v.SetDefault("arbitrage.symbols", []string{"WETH", "USDT"})
	v.SetDefault("arbitrage.reference_symbol", "USDC")
	v.SetDefault("arbitrage.min_profit", 5)
	v.SetDefault("arbitrage.deviation_pct", 0.5)
	v.SetDefault("arbitrage.min_trade_size", 0.1)
	v.SetDefault("arbitrage.max_trade_size", 250000)
	v.SetDefault("arbitrage.sizing_coefficient", 50)
	v.SetDefault("arbitrage.scan_interval", "10s")
	v.SetDefault("arbitrage.auto_execute", false)

	// Execution defaults
	v.SetDefault("execution.flash_loan_enabled", false)
	v.SetDefault("execution.flash_loan_fee_bps", 9) // Aave V3 premium
	v.SetDefault("execution.max_exposure", 10000)
	v.SetDefault("execution.step_timeout", "120s")
	v.SetDefault("execution.dry_run", true)

	// Wallet defaults
	v.SetDefault("wallet.initial_balance", 10000)

	// Ledger defaults
	v.SetDefault("ledger.backend", "file")
	v.SetDefault("ledger.file_path", "ledger.json")
	v.SetDefault("ledger.starting_balance", 10000)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "chainarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Networks) < 2 {
		return invalid("at least two networks must be configured, got %d", len(c.Networks))
	}
	seen := make(map[uint64]string, len(c.Networks))
	for name, n := range c.Networks {
		if n.ChainID == 0 {
			return invalid("networks.%s.chain_id is required", name)
		}
		if other, dup := seen[n.ChainID]; dup {
			return invalid("networks.%s and networks.%s share chain_id %d", name, other, n.ChainID)
		}
		seen[n.ChainID] = name
		if n.HTTPURL == "" && !c.Exchanges.Simulate {
			return invalid("networks.%s.http_url is required outside simulation", name)
		}
	}

	if len(c.Exchanges.Venues) == 0 {
		return invalid("exchanges.venues cannot be empty")
	}
	if !common.IsHexAddress(c.Exchanges.Uniswap.QuoterAddress) {
		return invalid("invalid exchanges.uniswap.quoter_address: %s", c.Exchanges.Uniswap.QuoterAddress)
	}
	if !common.IsHexAddress(c.Exchanges.Uniswap.RouterAddress) {
		return invalid("invalid exchanges.uniswap.router_address: %s", c.Exchanges.Uniswap.RouterAddress)
	}

	if len(c.Bridges.Providers) == 0 {
		return invalid("bridges.providers cannot be empty")
	}
	if c.Bridges.Timeout <= 0 {
		return invalid("bridges.timeout must be positive")
	}

	if len(c.Arbitrage.Symbols) == 0 {
		return invalid("arbitrage.symbols cannot be empty")
	}
	if c.Arbitrage.ReferenceSymbol == "" {
		return invalid("arbitrage.reference_symbol is required")
	}
	if c.Arbitrage.SizingCoeff <= 0 {
		return invalid("arbitrage.sizing_coefficient must be positive")
	}

	if c.Execution.MaxExposure <= 0 {
		return invalid("execution.max_exposure must be positive")
	}

	if !c.Execution.DryRun && !c.Exchanges.Simulate && c.Wallet.PrivateKey == "" {
		return invalid("wallet.private_key is required for live execution")
	}

	switch c.Ledger.Backend {
	case "file":
		if c.Ledger.FilePath == "" {
			return invalid("ledger.file_path is required for the file backend")
		}
	case "postgres":
		if c.Ledger.PostgresDSN == "" {
			return invalid("ledger.postgres_dsn is required for the postgres backend")
		}
	default:
		return invalid("unknown ledger.backend: %s", c.Ledger.Backend)
	}

	return nil
}

// Network returns the network config with the given chain ID.
func (c *Config) Network(chainID uint64) (string, NetworkConfig, bool) {
	for name, n := range c.Networks {
		if n.ChainID == chainID {
			return name, n, true
		}
	}
	return "", NetworkConfig{}, false
}

func invalid(format string, args ...any) error {
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithMessage(fmt.Sprintf(format, args...)))
}
