package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DBDSN       string `envconfig:"DB_DSN" required:"true"`

	// Токены
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"60m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// Платёжный шлюз (может быть переопределён site_settings)
	GatewayPublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	GatewaySecretKey string `envconfig:"OMISE_SECRET_KEY"`
	PaymentCurrency  string `envconfig:"PAYMENT_CURRENCY" default:"usd"`

	// Уведомления администратора
	TelegramToken       string `envconfig:"TELEGRAM_TOKEN"`
	TelegramAdminChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`

	// События
	AMQPURL        string `envconfig:"AMQP_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"tutoring.events"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv builds the config from environment variables only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GatewayEnabled reports whether checkout keys are configured in the environment
func (c *Config) GatewayEnabled() bool {
	return c.GatewayPublicKey != "" && c.GatewaySecretKey != ""
}
