// Package config loads and validates the bot configuration.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// Default configuration values, matching the bot's historical behavior.
const (
	DefaultCycleSeconds      = 5
	DefaultCooldownSeconds   = 60
	DefaultReentryThreshold  = 0.01
	DefaultMinProfitAbsolute = 10.0
	DefaultMinProfitPercent  = 1.0
	DefaultStopLossFactor    = 0.02
	DefaultTakeProfitFactor  = 0.03
	DefaultInitialCash       = 1000.0
	DefaultExchangeURL       = "https://api.kraken.com"
)

// Credentials is the opaque API key/secret pair used only for request
// signing. Never log or display these in cleartext.
type Credentials struct {
	APIKey    string `yaml:"api_key" json:"-"`
	APISecret string `yaml:"api_secret" json:"-"`
}

// Present reports whether both halves of the credential pair are set.
// Absent credentials force simulation mode.
func (c Credentials) Present() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// GuardConfig bundles the decision-engine guard parameters.
type GuardConfig struct {
	// CooldownSeconds is the minimum time between trades on one pair.
	CooldownSeconds int `yaml:"cooldown_seconds" validate:"gte=0"`
	// ReentryThreshold blocks buys within this fraction of the last buy price.
	ReentryThreshold float64 `yaml:"reentry_threshold" validate:"gte=0,lt=1"`
	// MinProfitAbsolute is the minimum absolute gain required to sell.
	MinProfitAbsolute float64 `yaml:"min_profit_absolute" validate:"gte=0"`
	// MinProfitPercent is the minimum percentage gain required to sell.
	MinProfitPercent float64 `yaml:"min_profit_percent" validate:"gte=0"`
}

// Cooldown returns the cooldown as a duration.
func (g GuardConfig) Cooldown() time.Duration {
	return time.Duration(g.CooldownSeconds) * time.Second
}

// LevelConfig holds the factors for the derived chart levels published in
// each snapshot.
type LevelConfig struct {
	StopLossFactor   float64 `yaml:"stop_loss_factor" validate:"gte=0,lt=1"`
	TakeProfitFactor float64 `yaml:"take_profit_factor" validate:"gte=0,lt=1"`
}

// ProtectedAsset declares a reserve floor for an externally-held asset.
// Real-mode sells touching the asset are rejected unless AllowSell is set
// and the post-trade balance stays at or above Floor.
type ProtectedAsset struct {
	Asset     string  `yaml:"asset" validate:"required"`
	Floor     float64 `yaml:"floor" validate:"gte=0"`
	AllowSell bool    `yaml:"allow_sell"`
}

// Config is the full bot configuration.
type Config struct {
	// Simulate selects the simulated ledger; it is forced on when
	// credentials are absent.
	Simulate     bool `yaml:"simulate"`
	CycleSeconds int  `yaml:"cycle_seconds" validate:"gt=0"`
	// InitialCash is the simulated wallet's starting quote-currency balance.
	InitialCash float64 `yaml:"initial_cash" validate:"gte=0"`
	// SeedInitialPositions performs one simulated buy per instrument at
	// startup, at the first fetched price.
	SeedInitialPositions bool `yaml:"seed_initial_positions"`

	Guards GuardConfig `yaml:"guards"`
	Levels LevelConfig `yaml:"levels"`

	Instruments     []types.Instrument `yaml:"instruments" validate:"dive"`
	ProtectedAssets []ProtectedAsset   `yaml:"protected_assets" validate:"dive"`

	Credentials Credentials `yaml:"credentials"`

	ExchangeURL string `yaml:"exchange_url" validate:"required,url"`
	// ServerListen is the snapshot API listen address; empty disables it.
	ServerListen string `yaml:"server_listen"`
	// TradeLogPath is the parquet output for the persistent trade log;
	// empty disables persistence.
	TradeLogPath string `yaml:"trade_log_path"`
}

// CycleInterval returns the loop period as a duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.CycleSeconds) * time.Second
}

// Mode returns the effective trading mode after applying the
// missing-credentials rule.
func (c *Config) Mode() types.Mode {
	if c.Simulate || !c.Credentials.Present() {
		return types.ModeSimulated
	}

	return types.ModeReal
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Simulate && !c.Credentials.Present() {
		return errors.New(errors.ErrCodeInvalidCredentials,
			"real mode requires api_key and api_secret; set simulate: true or provide credentials")
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// DefaultConfig returns a configuration populated with the default guard
// parameters and an empty instrument set, in simulation mode.
func DefaultConfig() *Config {
	return &Config{
		Simulate:             true,
		CycleSeconds:         DefaultCycleSeconds,
		InitialCash:          DefaultInitialCash,
		SeedInitialPositions: false,
		Guards: GuardConfig{
			CooldownSeconds:   DefaultCooldownSeconds,
			ReentryThreshold:  DefaultReentryThreshold,
			MinProfitAbsolute: DefaultMinProfitAbsolute,
			MinProfitPercent:  DefaultMinProfitPercent,
		},
		Levels: LevelConfig{
			StopLossFactor:   DefaultStopLossFactor,
			TakeProfitFactor: DefaultTakeProfitFactor,
		},
		Instruments:     nil,
		ProtectedAssets: nil,
		Credentials:     Credentials{APIKey: "", APISecret: ""},
		ExchangeURL:     DefaultExchangeURL,
		ServerListen:    "",
		TradeLogPath:    "",
	}
}

// Load reads a YAML configuration file, fills unset fields with defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML configuration bytes on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
