package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"vega/pkg/errors"
)

type Config struct {
	App           AppConfig
	Scan          ScanConfig
	Risk          RiskConfig
	Selection     SelectionConfig
	Providers     ProvidersConfig
	Advisor       AdvisorConfig
	ErrorTracking ErrorTrackingConfig
	Metrics       MetricsConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"vega"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ScanConfig struct {
	Symbols         []string `envconfig:"SCAN_SYMBOLS" default:"SPY,QQQ,IWM"`
	Side            string   `envconfig:"SCAN_SIDE" default:"call"`
	Cadence         string   `envconfig:"SCAN_CADENCE" default:"weekly"`
	MinBusinessDays int      `envconfig:"SCAN_MIN_BUSINESS_DAYS" default:"2"`
	OTMPct          float64  `envconfig:"SCAN_OTM_PCT" default:"0"` // 0 = per-symbol policy default
	RiskFreeRate    float64  `envconfig:"SCAN_RISK_FREE_RATE" default:"0.045"`
	BarHistory      int      `envconfig:"SCAN_BAR_HISTORY" default:"120"`

	// SymbolsPerSecond paces provider traffic across the symbol list
	SymbolsPerSecond float64 `envconfig:"SCAN_SYMBOLS_PER_SECOND" default:"1"`
}

type RiskConfig struct {
	AccountSize    float64 `envconfig:"RISK_ACCOUNT_SIZE" default:"25000"`
	RiskPct        float64 `envconfig:"RISK_PCT" default:"0.01"`
	Strategy       string  `envconfig:"RISK_STRATEGY" default:"day_trade"`
	MaxContracts   int     `envconfig:"RISK_MAX_CONTRACTS" default:"10"`
	StopLossPct    float64 `envconfig:"RISK_STOP_LOSS_PCT" default:"0.30"`
	TakeProfitMult float64 `envconfig:"RISK_TAKE_PROFIT_MULT" default:"0.50"`
}

type SelectionConfig struct {
	TargetDelta     float64 `envconfig:"SELECTION_TARGET_DELTA" default:"0.35"`
	MaxSpreadPct    float64 `envconfig:"SELECTION_MAX_SPREAD_PCT" default:"0.10"`
	MinOpenInterest int64   `envconfig:"SELECTION_MIN_OPEN_INTEREST" default:"100"`
}

type ProvidersConfig struct {
	PrimaryURL        string        `envconfig:"PROVIDER_PRIMARY_URL"`
	PrimaryKey        string        `envconfig:"PROVIDER_PRIMARY_KEY"`
	BackupURL         string        `envconfig:"PROVIDER_BACKUP_URL"`
	BackupKey         string        `envconfig:"PROVIDER_BACKUP_KEY"`
	Timeout           time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"PROVIDER_REQUESTS_PER_MINUTE" default:"120"`
	QuoteTTL          time.Duration `envconfig:"PROVIDER_QUOTE_TTL" default:"20s"`
}

type AdvisorConfig struct {
	Enabled bool          `envconfig:"ADVISOR_ENABLED" default:"false"`
	BaseURL string        `envconfig:"ADVISOR_BASE_URL" default:"https://api.openai.com"`
	APIKey  string        `envconfig:"ADVISOR_API_KEY"`
	Model   string        `envconfig:"ADVISOR_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"ADVISOR_TIMEOUT" default:"30s"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// WorkerConfig contains intervals for the background workers
type WorkerConfig struct {
	ScanInterval   time.Duration `envconfig:"WORKER_SCAN_INTERVAL" default:"5m"`
	MaxConcurrency int           `envconfig:"WORKER_MAX_CONCURRENCY" default:"4"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Scan.Symbols) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "SCAN_SYMBOLS must not be empty")
	}
	switch strings.ToLower(c.Scan.Side) {
	case "call", "put":
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "SCAN_SIDE must be call or put, got %q", c.Scan.Side)
	}
	if c.Scan.SymbolsPerSecond <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "SCAN_SYMBOLS_PER_SECOND must be positive, got %v", c.Scan.SymbolsPerSecond)
	}
	if c.Risk.RiskPct <= 0 || c.Risk.RiskPct >= 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "RISK_PCT must be in (0,1), got %v", c.Risk.RiskPct)
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.StopLossPct >= 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "RISK_STOP_LOSS_PCT must be in (0,1), got %v", c.Risk.StopLossPct)
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return errors.Wrap(errors.ErrInvalidInput, "ADVISOR_API_KEY required when advisor is enabled")
	}
	return nil
}
