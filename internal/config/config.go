package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Midtrans MidtransConfig
	Schedule ScheduleConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret string
}

// PaymentConfig holds the business knobs of the payment core.
type PaymentConfig struct {
	GatewayProvider    string
	DefaultCurrency    string
	PlatformFeePercent decimal.Decimal
	RefundWindowDays   int
	HoldingPeriodDays  int
	PayoutMinimum      decimal.Decimal

	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	PollMaxAttempts     int
	PollGuardTTL        time.Duration
	StalePendingAfter   time.Duration
	StaleSweepBatch     int

	WebhookMaxRetries      int
	WebhookRetryInterval   time.Duration
	WebhookRetryMaxBackoff time.Duration

	// APPROVED refunds untouched for this long are settled again by the scheduler.
	RefundSettleAfter time.Duration

	Midtrans MidtransConfig
}

type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
}

type ScheduleConfig struct {
	StaleSweepSpec string
	MaturationSpec string
	RefundSpec     string
}

func (c PaymentConfig) RefundWindow() time.Duration {
	return time.Duration(c.RefundWindowDays) * 24 * time.Hour
}

func (c PaymentConfig) HoldingPeriod() time.Duration {
	return time.Duration(c.HoldingPeriodDays) * 24 * time.Hour
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	midtrans := MidtransConfig{
		ServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
		ClientKey:    getEnv("MIDTRANS_CLIENT_KEY", ""),
		IsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Course Marketplace"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Payment: PaymentConfig{
			GatewayProvider:     getEnv("PAYMENT_GATEWAY", "midtrans"),
			DefaultCurrency:     getEnv("PAYMENT_DEFAULT_CURRENCY", "IDR"),
			PlatformFeePercent:  getEnvAsDecimal("PLATFORM_FEE_PERCENT", decimal.NewFromInt(20)),
			RefundWindowDays:    getEnvAsInt("REFUND_WINDOW_DAYS", 7),
			HoldingPeriodDays:   getEnvAsInt("HOLDING_PERIOD_DAYS", 14),
			PayoutMinimum:       getEnvAsDecimal("PAYOUT_MINIMUM", decimal.NewFromInt(50)),
			PollInitialInterval: getEnvAsDuration("PAYMENT_POLL_INITIAL_INTERVAL", 5*time.Second),
			PollMaxInterval:     getEnvAsDuration("PAYMENT_POLL_MAX_INTERVAL", 2*time.Minute),
			PollMaxAttempts:     getEnvAsInt("PAYMENT_POLL_MAX_ATTEMPTS", 12),
			PollGuardTTL:        getEnvAsDuration("PAYMENT_POLL_GUARD_TTL", 3*time.Second),
			StalePendingAfter:   getEnvAsDuration("PAYMENT_STALE_AFTER", 30*time.Minute),
			StaleSweepBatch:     getEnvAsInt("PAYMENT_STALE_SWEEP_BATCH", 100),

			WebhookMaxRetries:      getEnvAsInt("WEBHOOK_MAX_RETRIES", 5),
			WebhookRetryInterval:   getEnvAsDuration("WEBHOOK_RETRY_INTERVAL", 500*time.Millisecond),
			WebhookRetryMaxBackoff: getEnvAsDuration("WEBHOOK_RETRY_MAX_BACKOFF", 10*time.Second),
			RefundSettleAfter:      getEnvAsDuration("REFUND_SETTLE_AFTER", 10*time.Minute),

			Midtrans: midtrans,
		},
		Midtrans: midtrans,
		Schedule: ScheduleConfig{
			StaleSweepSpec: getEnv("CRON_STALE_SWEEP", "0 */10 * * * *"),
			MaturationSpec: getEnv("CRON_LEDGER_MATURATION", "0 0 * * * *"),
			RefundSpec:     getEnv("CRON_REFUND_SETTLEMENT", "0 */5 * * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	strValue := getEnv(key, "")
	if value, err := decimal.NewFromString(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
