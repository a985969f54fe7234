package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StockConfig controls how inventory quantities are bucketed in list views.
type StockConfig struct {
	// LowStockCeiling is the inclusive upper bound of the low_stock band.
	LowStockCeiling int `mapstructure:"lowStockCeiling"`
}

func DefaultStockConfig() StockConfig {
	return StockConfig{LowStockCeiling: 10}
}

type StockConfigHolder struct {
	current atomic.Value // holds StockConfig
}

// NewStockConfigHolder reads stock.yml and keeps it updated on file changes.
func NewStockConfigHolder(log *zap.Logger) (*StockConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("stock")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/stockroom")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STOCKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStockConfig()
	v.SetDefault("stock.lowStockCeiling", defaults.LowStockCeiling)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg StockConfig
	if err := v.UnmarshalKey("stock", &cfg); err != nil {
		return nil, err
	}
	if err := validateStockConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticStockConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	log = log.Named("config.stock")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StockConfig
		if err := v.UnmarshalKey("stock", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateStockConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name), zap.Int("low_stock_ceiling", updated.LowStockCeiling))
	})

	return holder, nil
}

// NewStaticStockConfigHolder returns a holder that never reloads.
func NewStaticStockConfigHolder(cfg StockConfig) *StockConfigHolder {
	holder := &StockConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *StockConfigHolder) Get() StockConfig {
	return h.current.Load().(StockConfig)
}

func validateStockConfig(cfg StockConfig) error {
	if cfg.LowStockCeiling < 1 {
		return errors.New("stock.lowStockCeiling must be at least 1")
	}
	return nil
}
