package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Inventory *InventoryConfig `mapstructure:"inventory"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// InventoryConfig holds the classifier defaults and the product lock timeout.
// The classifier defaults are reloaded when the config file changes.
type InventoryConfig struct {
	LowStockThreshold  int           `mapstructure:"low_stock_threshold"`
	ExpiringWindowDays int           `mapstructure:"expiring_window_days"`
	LockTimeout        time.Duration `mapstructure:"lock_timeout"`
}

func (c *InventoryConfig) Validate() error {
	if c.LowStockThreshold <= 0 {
		return domain.NewConfigurationError("inventory.low_stock_threshold", c.LowStockThreshold)
	}
	if c.ExpiringWindowDays <= 0 {
		return domain.NewConfigurationError("inventory.expiring_window_days", c.ExpiringWindowDays)
	}
	if c.LockTimeout <= 0 {
		return domain.NewConfigurationError("inventory.lock_timeout", int(c.LockTimeout.Milliseconds()))
	}
	return nil
}

// Load reads the YAML file at path. Every key can be overridden by an
// environment variable named after it, e.g. API_PORT or INVENTORY_LOCK_TIMEOUT.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// Watch calls onChange with the new config every time the file at path is
// written. Invalid revisions are logged and skipped.
func Watch(path string, onChange func(*AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		conf, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("inventory.low_stock_threshold", domain.DefaultLowStockThreshold)
	v.SetDefault("inventory.expiring_window_days", domain.DefaultExpiringWindowDays)
	v.SetDefault("inventory.lock_timeout", "3s")

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API == nil {
		conf.API = &APIConfig{}
	}
	if conf.Gin == nil {
		conf.Gin = &GinConfig{}
	}
	if conf.Postgres == nil {
		conf.Postgres = &PostgresConfig{}
	}
	if conf.Storage == nil {
		conf.Storage = &StorageConfig{}
	}
	if conf.Inventory == nil {
		conf.Inventory = &InventoryConfig{}
	}

	if err := conf.Inventory.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}
