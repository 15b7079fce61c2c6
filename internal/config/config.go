// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"mwallet-gateway/internal/domain"
)

const (
	EnvironmentSandbox = "sandbox"
	EnvironmentLive    = "live"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling"`                // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"HTTP_PORT"`
	CallbackPath   string        `yaml:"callback_path" env:"HTTP_CALLBACK_PATH"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type RedisConfig struct {
	Enabled       bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	URL           string `yaml:"url" env:"REDIS_URL"`
	Password      string `yaml:"password" env:"REDIS_PASSWORD"`
	DB            int    `yaml:"db" env:"REDIS_DB"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// Credentials is one environment's merchant credential set. Immutable after load.
type Credentials struct {
	MerchantID    string `yaml:"merchant_id" env:"MERCHANT_ID"`
	Password      string `yaml:"password" env:"PASSWORD"`
	IntegritySalt string `yaml:"integrity_salt" env:"INTEGRITY_SALT"`
	ReturnURL     string `yaml:"return_url" env:"RETURN_URL"`
	APIBaseURL    string `yaml:"api_base_url" env:"API_BASE_URL"`
}

type EndpointsConfig struct {
	DoMobileWalletTransaction string `yaml:"do_mobile_wallet_transaction"`
	TransactionInquiry        string `yaml:"transaction_inquiry"`
}

type JazzCashConfig struct {
	Environment       string          `yaml:"environment" env:"JAZZCASH_ENVIRONMENT"` // sandbox | live
	APIVersion        string          `yaml:"api_version" env:"JAZZCASH_API_VERSION"`
	Language          string          `yaml:"language"`
	Currency          string          `yaml:"currency"`
	DatetimeFormat    string          `yaml:"datetime_format"` // Go time layout
	TransactionExpiry time.Duration   `yaml:"transaction_expiry"`
	Timeout           time.Duration   `yaml:"timeout"`
	SendReturnURL     bool            `yaml:"send_return_url"`
	Sandbox           Credentials     `yaml:"sandbox" env-prefix:"JAZZCASH_SANDBOX_"`
	Live              Credentials     `yaml:"live" env-prefix:"JAZZCASH_LIVE_"`
	Endpoints         EndpointsConfig `yaml:"endpoints"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`
	JazzCash JazzCashConfig `yaml:"jazzcash"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies environment overrides,
// fills defaults and validates the active credential set.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse builds a Config from YAML bytes plus the process environment.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env overrides: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.JazzCash.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.CallbackPath == "" {
		c.HTTP.CallbackPath = "/jazzcash/callback"
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 10 * time.Second
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = "jazzcash"
	}
	c.JazzCash.applyDefaults()
}

func (j *JazzCashConfig) applyDefaults() {
	j.Environment = strings.ToLower(strings.TrimSpace(j.Environment))
	if j.Environment == "" {
		j.Environment = EnvironmentSandbox
	}
	if j.APIVersion == "" {
		j.APIVersion = "2.0"
	}
	if j.Language == "" {
		j.Language = "EN"
	}
	if j.Currency == "" {
		j.Currency = "PKR"
	}
	if j.DatetimeFormat == "" {
		j.DatetimeFormat = "20060102150405"
	}
	if j.TransactionExpiry <= 0 {
		j.TransactionExpiry = time.Hour
	}
	if j.Timeout <= 0 {
		j.Timeout = 30 * time.Second
	}
	if j.Endpoints.DoMobileWalletTransaction == "" {
		j.Endpoints.DoMobileWalletTransaction = "{version}/Purchase/DoMWalletTransaction"
	}
	if j.Endpoints.TransactionInquiry == "" {
		j.Endpoints.TransactionInquiry = "{version}/Status/TransactionInquiry"
	}
}

// Credentials returns the credential set of the configured environment.
func (j JazzCashConfig) Credentials() Credentials {
	if j.Environment == EnvironmentLive {
		return j.Live
	}
	return j.Sandbox
}

// Validate fails when the environment is unknown or its credential set is incomplete.
func (j JazzCashConfig) Validate() error {
	if j.Environment != EnvironmentSandbox && j.Environment != EnvironmentLive {
		return fmt.Errorf("jazzcash.environment %q must be sandbox or live: %w", j.Environment, domain.ErrConfiguration)
	}
	c := j.Credentials()
	var missing []string
	if c.MerchantID == "" {
		missing = append(missing, "merchant_id")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.IntegritySalt == "" {
		missing = append(missing, "integrity_salt")
	}
	if c.APIBaseURL == "" {
		missing = append(missing, "api_base_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("jazzcash credentials for %s are not fully configured (missing %s): %w",
			j.Environment, strings.Join(missing, ", "), domain.ErrConfiguration)
	}
	return nil
}
