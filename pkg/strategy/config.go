package strategy

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"basketbot/pkg/exchange"
)

// AllocationPolicy selects how the available quote balance is divided
// across buy candidates.
type AllocationPolicy string

const (
	// AllocationTiered caps the candidate count by balance size before
	// weighting, mirroring small-account behaviour.
	AllocationTiered AllocationPolicy = "tiered"
	// AllocationInverseRSI weights every candidate by (100 - RSI).
	AllocationInverseRSI AllocationPolicy = "inverse_rsi"
)

// Config is the strategy section: indicator parameters, eligibility
// thresholds and allocation constraints. Amount fields are written as
// strings in YAML and parsed into decimals during normalisation.
type Config struct {
	RSIPeriod        int              `yaml:"rsi_period"`
	SMAWindow        int              `yaml:"sma_window"`
	BucketRaw        string           `yaml:"bucket"`
	LookbackRaw      string           `yaml:"lookback"`
	Overbought       float64          `yaml:"overbought"`
	Oversold         float64          `yaml:"oversold"`
	RequireSMACross  bool             `yaml:"require_sma_cross"`
	Stablecoins      []string         `yaml:"stablecoins"`
	MaxBuyCandidates int              `yaml:"max_buy_candidates"`
	Policy           AllocationPolicy `yaml:"allocation_policy"`

	RoundingUnitRaw  string `yaml:"rounding_unit"`
	MinOrderSizeRaw  string `yaml:"min_order_size"`
	DustThresholdRaw string `yaml:"dust_threshold"`
	MinFiatValueRaw  string `yaml:"min_fiat_value"`

	Bucket        time.Duration   `yaml:"-"`
	Lookback      time.Duration   `yaml:"-"`
	RoundingUnit  decimal.Decimal `yaml:"-"`
	MinOrderSize  decimal.Decimal `yaml:"-"`
	DustThreshold decimal.Decimal `yaml:"-"`
	MinFiatValue  decimal.Decimal `yaml:"-"`

	denylist map[string]struct{}
}

// Default returns the strategy configuration used when no section file is
// configured.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.normalise(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads a strategy section from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strategy config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read strategy config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal strategy config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
	if c.SMAWindow <= 0 {
		c.SMAWindow = 20
	}
	if c.Overbought <= 0 {
		c.Overbought = 70
	}
	if c.Oversold <= 0 {
		c.Oversold = 30
	}
	if c.MaxBuyCandidates <= 0 {
		c.MaxBuyCandidates = 3
	}
	if c.Policy == "" {
		c.Policy = AllocationInverseRSI
	}
	switch c.Policy {
	case AllocationTiered, AllocationInverseRSI:
	default:
		return fmt.Errorf("strategy config: unknown allocation_policy %q", c.Policy)
	}
	if c.Oversold >= c.Overbought {
		return fmt.Errorf("strategy config: oversold %.1f must be below overbought %.1f", c.Oversold, c.Overbought)
	}

	var err error
	if c.Bucket, err = parseDurationDefault(c.BucketRaw, time.Hour); err != nil {
		return fmt.Errorf("strategy config: bucket: %w", err)
	}
	if c.Lookback, err = parseDurationDefault(c.LookbackRaw, 96*time.Hour); err != nil {
		return fmt.Errorf("strategy config: lookback: %w", err)
	}
	if c.RoundingUnit, err = parseDecimalDefault(c.RoundingUnitRaw, "10"); err != nil {
		return fmt.Errorf("strategy config: rounding_unit: %w", err)
	}
	if c.MinOrderSize, err = parseDecimalDefault(c.MinOrderSizeRaw, "10"); err != nil {
		return fmt.Errorf("strategy config: min_order_size: %w", err)
	}
	if c.DustThreshold, err = parseDecimalDefault(c.DustThresholdRaw, "0.00001"); err != nil {
		return fmt.Errorf("strategy config: dust_threshold: %w", err)
	}
	if c.MinFiatValue, err = parseDecimalDefault(c.MinFiatValueRaw, "0.90"); err != nil {
		return fmt.Errorf("strategy config: min_fiat_value: %w", err)
	}
	if c.RoundingUnit.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("strategy config: rounding_unit must be positive")
	}

	c.denylist = make(map[string]struct{}, len(c.Stablecoins))
	for _, s := range c.Stablecoins {
		c.denylist[exchange.Canonical(s)] = struct{}{}
	}
	return nil
}

// Denylisted reports whether a symbol is a configured stable-value asset.
func (c *Config) Denylisted(symbol string) bool {
	_, ok := c.denylist[exchange.Canonical(symbol)]
	return ok
}

func parseDurationDefault(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func parseDecimalDefault(raw, fallback string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}
