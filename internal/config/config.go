package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the service.
type Config struct {
	AppPort   string
	JWTSecret string

	DBDriver    string
	DatabaseDSN string

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "shopcore.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "shopcore.events")
	v.SetDefault("RABBITMQ_QUEUE", "shopcore.orders")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PRODUCT_CACHE_TTL", "5m")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "products")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")
}

// Load reads configuration from the environment, falling back to an optional
// config.yaml in dir and then to defaults. An empty dir skips the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		DBDriver:         v.GetString("DB_DRIVER"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		ProductCacheTTL:  v.GetDuration("PRODUCT_CACHE_TTL"),
		MinioEndpoint:    v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:   v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:   v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:      v.GetString("MINIO_BUCKET"),
		MinioUseSSL:      v.GetBool("MINIO_USE_SSL"),
		MinioPublicURL:   v.GetString("MINIO_PUBLIC_URL"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.ProductCacheTTL <= 0 {
		return nil, fmt.Errorf("PRODUCT_CACHE_TTL must be positive, got %s", cfg.ProductCacheTTL)
	}
	return cfg, nil
}
