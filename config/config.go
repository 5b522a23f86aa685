// Package config loads the run configuration and broker credentials.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath config file looked up in the working directory.
	DefaultPath = "buy_low.yaml"
	// DefaultEnvFile dotenv file with broker credentials.
	DefaultEnvFile = ".env"

	defaultFetchConcurrency = 4
)

// Environment variables holding secrets.
const (
	EnvRefreshToken = "SCHWAB_REFRESH_TOKEN"
	EnvAppKey       = "SCHWAB_APP_KEY"
	EnvAppSecret    = "SCHWAB_APP_SECRET"
	EnvPostgresDSN  = "POSTGRES_CONN_STRING"
)

// Config typed run configuration.
type Config struct {
	// MaximumAmount budget for this run.
	MaximumAmount decimal.Decimal
	// Equities watchlist in evaluation order.
	Equities         []string
	Lookback         Lookback
	FetchConcurrency int
	OrderLog         OrderLog
}

// Lookback price history window for baseline prices.
type Lookback struct {
	PeriodType    string `yaml:"period_type,omitempty"`
	Period        int    `yaml:"period,omitempty"`
	FrequencyType string `yaml:"frequency_type,omitempty"`
}

// OrderLog optional persistence of placed orders.
type OrderLog struct {
	// WALDir enables the local order journal when set.
	WALDir string `yaml:"wal_dir,omitempty"`
	// Postgres enables inserting orders into the database at POSTGRES_CONN_STRING.
	Postgres bool `yaml:"postgres,omitempty"`
}

// File on-disk yaml layout.
type File struct {
	MaximumAmount    string   `yaml:"maximum_amount"`
	Equities         []string `yaml:"equities"`
	Lookback         Lookback `yaml:"lookback,omitempty"`
	FetchConcurrency int      `yaml:"fetch_concurrency,omitempty"`
	OrderLog         OrderLog `yaml:"order_log,omitempty"`
}

// Credentials secrets read from the environment.
type Credentials struct {
	AppKey       string
	AppSecret    string
	RefreshToken string
	PostgresDSN  string
}

// Load reads and validates the yaml config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a yaml config.
func Parse(data []byte) (Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, errors.Wrap(err, "decode yaml config")
	}

	amount, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(f.MaximumAmount), "$"))
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'maximum_amount' param in yaml config (correct format is 500.00), error: %w", err)
	}

	cfg := Config{
		MaximumAmount:    amount,
		Equities:         normalizeSymbols(f.Equities),
		Lookback:         f.Lookback,
		FetchConcurrency: f.FetchConcurrency,
		OrderLog:         f.OrderLog,
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	if !c.MaximumAmount.IsPositive() {
		return fmt.Errorf("'maximum_amount' must be positive, got %s", c.MaximumAmount.String())
	}
	if len(c.Equities) == 0 {
		return errors.New("'equities' must list at least one symbol")
	}

	seen := make(map[string]struct{}, len(c.Equities))
	for _, s := range c.Equities {
		if s == "" {
			return errors.New("'equities' contains an empty symbol")
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("'equities' lists %s more than once", s)
		}
		seen[s] = struct{}{}
	}

	switch c.Lookback.PeriodType {
	case "", "day", "month", "year", "ytd":
	default:
		return fmt.Errorf("unsupported lookback period_type %q", c.Lookback.PeriodType)
	}
	if c.Lookback.Period < 0 {
		return fmt.Errorf("lookback period must not be negative, got %d", c.Lookback.Period)
	}

	return nil
}

// ToFile converts the config back to its yaml layout.
func (c Config) ToFile() File {
	return File{
		MaximumAmount:    c.MaximumAmount.StringFixed(2),
		Equities:         c.Equities,
		Lookback:         c.Lookback,
		FetchConcurrency: c.FetchConcurrency,
		OrderLog:         c.OrderLog,
	}
}

// Save writes the config as yaml to path.
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c.ToFile())
	if err != nil {
		return errors.Wrap(err, "encode yaml config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// LoadCredentials reads secrets from the environment, loading envFile first when it exists.
// Variables already set in the environment take precedence over the file.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, errors.Wrapf(err, "load env file %s", envFile)
		}
	}

	return Credentials{
		AppKey:       os.Getenv(EnvAppKey),
		AppSecret:    os.Getenv(EnvAppSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
		PostgresDSN:  os.Getenv(EnvPostgresDSN),
	}, nil
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, strings.ToUpper(strings.TrimSpace(s)))
	}
	return out
}
