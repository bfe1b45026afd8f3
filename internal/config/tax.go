package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TaxConfig holds organization-independent tax defaults.
type TaxConfig struct {
	DefaultRate       decimal.Decimal
	CompanyState      string
	QuoteValidityDays int
	QuoteNumberPrefix string
}

func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		DefaultRate:       decimal.NewFromInt(18),
		CompanyState:      "",
		QuoteValidityDays: 30,
		QuoteNumberPrefix: "QT-",
	}
}

type TaxConfigHolder struct {
	current atomic.Value // holds TaxConfig
}

// NewTaxConfigHolder reads tax.yml and keeps it up to date while the file
// changes. A missing file yields the defaults.
func NewTaxConfigHolder(cfg Config, log *zap.Logger) (*TaxConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.tax")

	v := viper.New()
	if cfg.TaxConfigPath != "" {
		v.SetConfigFile(cfg.TaxConfigPath)
	} else {
		v.SetConfigName("tax")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/robobooks")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROBOBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTaxConfig()
	v.SetDefault("tax.defaultRate", defaults.DefaultRate.String())
	v.SetDefault("tax.companyState", defaults.CompanyState)
	v.SetDefault("tax.quoteValidityDays", defaults.QuoteValidityDays)
	v.SetDefault("tax.quoteNumberPrefix", defaults.QuoteNumberPrefix)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	current, err := readTaxConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticTaxConfigHolder(current)
	if !fileLoaded {
		log.Info("tax config file not found, using defaults")
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readTaxConfig(v)
		if err != nil {
			log.Warn("invalid tax config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("tax config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticTaxConfigHolder returns a holder that never reloads.
func NewStaticTaxConfigHolder(cfg TaxConfig) *TaxConfigHolder {
	holder := &TaxConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TaxConfigHolder) Get() TaxConfig {
	if h == nil {
		return DefaultTaxConfig()
	}
	return h.current.Load().(TaxConfig)
}

// readTaxConfig parses the rate from its string form so a value such as
// 12.5 stays exact.
func readTaxConfig(v *viper.Viper) (TaxConfig, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(v.GetString("tax.defaultRate")))
	if err != nil {
		return TaxConfig{}, fmt.Errorf("tax.defaultRate: %w", err)
	}
	cfg := TaxConfig{
		DefaultRate:       rate,
		CompanyState:      strings.TrimSpace(v.GetString("tax.companyState")),
		QuoteValidityDays: v.GetInt("tax.quoteValidityDays"),
		QuoteNumberPrefix: strings.TrimSpace(v.GetString("tax.quoteNumberPrefix")),
	}
	if err := validateTaxConfig(cfg); err != nil {
		return TaxConfig{}, err
	}
	return cfg, nil
}

func validateTaxConfig(cfg TaxConfig) error {
	if cfg.DefaultRate.IsNegative() || cfg.DefaultRate.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("tax.defaultRate must be between 0 and 100")
	}
	if cfg.QuoteValidityDays <= 0 {
		return errors.New("tax.quoteValidityDays must be positive")
	}
	if cfg.QuoteNumberPrefix == "" {
		return errors.New("tax.quoteNumberPrefix cannot be empty")
	}
	return nil
}
