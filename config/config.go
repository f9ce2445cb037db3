package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MetricsPath       string        `mapstructure:"METRICS_PATH"`

	// Storage. STORE_DRIVER is "mongo" or "memory".
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB         int           `mapstructure:"REDIS_QUEUE_DB"`
	AvailabilityCacheTTL time.Duration `mapstructure:"AVAILABILITY_CACHE_TTL"`

	// Push delivery.
	PushEnabled             bool   `mapstructure:"PUSH_ENABLED"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Auth.
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	// Booking policy.
	SlotStepMinutes int     `mapstructure:"SLOT_STEP_MINUTES"`
	BookingFee      float64 `mapstructure:"BOOKING_FEE"`
	Currency        string  `mapstructure:"CURRENCY"`

	// Client subscriptions. With REQUIRE_SUBSCRIPTION set, only clients with
	// an active plan can create bookings.
	SubscriptionFee     float64 `mapstructure:"SUBSCRIPTION_FEE"`
	RequireSubscription bool    `mapstructure:"REQUIRE_SUBSCRIPTION"`
}

var AppConfig Config

func LoadConfig() error {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return AppConfig.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "marketplace")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "5m")
	v.SetDefault("PUSH_ENABLED", false)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("SLOT_STEP_MINUTES", 30)
	v.SetDefault("BOOKING_FEE", 35.0)
	v.SetDefault("CURRENCY", "ZAR")
	v.SetDefault("SUBSCRIPTION_FEE", 35.0)
	v.SetDefault("REQUIRE_SUBSCRIPTION", false)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SlotStepMinutes <= 0 || c.SlotStepMinutes > 24*60 {
		return fmt.Errorf("SLOT_STEP_MINUTES must be between 1 and 1440, got %d", c.SlotStepMinutes)
	}
	if c.BookingFee < 0 {
		return fmt.Errorf("BOOKING_FEE must not be negative")
	}
	if c.SubscriptionFee <= 0 {
		return fmt.Errorf("SUBSCRIPTION_FEE must be positive")
	}
	if IsProduction() && (c.JWTSecret == "" || c.AdminToken == "") {
		return fmt.Errorf("JWT_SECRET and ADMIN_TOKEN are required in production")
	}
	return nil
}

// SlotStep returns the configured slot granularity.
func (c Config) SlotStep() time.Duration {
	return time.Duration(c.SlotStepMinutes) * time.Minute
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
