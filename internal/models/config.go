package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type StoreConfig struct {
	Driver       string `mapstructure:"driver"` // memory, postgres, sqlite
	DSN          string `mapstructure:"dsn"`
	SnapshotPath string `mapstructure:"snapshot_path"` // JSON snapshot for the memory driver
}

type AnalyticsConfig struct {
	OperatingExpenseRatio float64 `mapstructure:"operating_expense_ratio"`
	DemandJitterMin       float64 `mapstructure:"demand_jitter_min"`
	DemandJitterMax       float64 `mapstructure:"demand_jitter_max"`
	ForecastDays          int     `mapstructure:"forecast_days"`
	Workers               int     `mapstructure:"workers"`
}

// DefaultAnalyticsConfig returns the business defaults: a 15% operating
// expense ratio and a 0.8x to 1.2x daily demand multiplier.
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		OperatingExpenseRatio: 0.15,
		DemandJitterMin:       0.8,
		DemandJitterMax:       1.2,
		ForecastDays:          30,
		Workers:               4,
	}
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type OutputConfig struct {
	Format       string             `mapstructure:"format"` // console, json, csv, parquet, kafka
	Path         string             `mapstructure:"path"`
	Folder       string             `mapstructure:"folder"`
	Destination  string             `mapstructure:"destination"` // local, s3
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

type KafkaConfig struct {
	BrokerList       string `mapstructure:"broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	Prefix        string        `mapstructure:"prefix"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type Config struct {
	Seed      int64           `mapstructure:"seed"` // 0 seeds from the wall clock
	LogLevel  string          `mapstructure:"log_level"`
	Store     StoreConfig     `mapstructure:"store"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Output    OutputConfig    `mapstructure:"output"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("seed", 0)
	v.SetDefault("log_level", "info")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.snapshot_path", "")

	v.SetDefault("analytics.operating_expense_ratio", 0.15)
	v.SetDefault("analytics.demand_jitter_min", 0.8)
	v.SetDefault("analytics.demand_jitter_max", 1.2)
	v.SetDefault("analytics.forecast_days", 30)
	v.SetDefault("analytics.workers", 4)

	v.SetDefault("output.format", "console")
	v.SetDefault("output.path", "output")
	v.SetDefault("output.folder", "reports")
	v.SetDefault("output.destination", "local")
	v.SetDefault("output.cloud_storage.provider", "s3")
	v.SetDefault("output.cloud_storage.bucket_name", "")
	v.SetDefault("output.cloud_storage.region", "us-east-1")

	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("kafka.session_timeout_ms", 45000)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.prefix", "retailiq")

	v.SetDefault("server.port", 8080)
}

// LoadConfig initializes and reads the configuration using Viper. An empty
// cfgFile falls back to ./retailiq.yaml when present, otherwise defaults and
// environment variables (RETAILIQ_STORE_DRIVER, ...) are used.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("retailiq")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("retailiq")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the engines cannot work with.
func (c *Config) Validate() error {
	a := c.Analytics
	if a.OperatingExpenseRatio < 0 || a.OperatingExpenseRatio > 1 {
		return fmt.Errorf("analytics.operating_expense_ratio must be within [0,1], got %v", a.OperatingExpenseRatio)
	}
	if a.DemandJitterMin < 0 || a.DemandJitterMax < a.DemandJitterMin {
		return fmt.Errorf("analytics demand jitter range [%v,%v] is invalid", a.DemandJitterMin, a.DemandJitterMax)
	}
	switch c.Store.Driver {
	case "memory", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	return nil
}
