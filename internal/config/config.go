package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`
	MigrationsPath    string        `mapstructure:"MIGRATIONS_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Auth. Tokens are issued by the identity service; we only verify them.
	JWTSecretKey string `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`

	// Rewards
	PriceSubmissionPoints int `mapstructure:"PRICE_SUBMISSION_POINTS"`

	// Cron Jobs
	NotificationRetentionDays        int    `mapstructure:"NOTIFICATION_RETENTION_DAYS"`
	NotificationRetentionJobSchedule string `mapstructure:"NOTIFICATION_RETENTION_JOB_SCHEDULE"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Kafka Configuration
	KafkaBrokers     []string `mapstructure:"-"`
	KafkaEventsTopic string   `mapstructure:"KAFKA_EVENTS_TOPIC"`

	// Redis Configuration
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"-"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "pricehive_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("PRICE_SUBMISSION_POINTS", 10)

	v.SetDefault("NOTIFICATION_RETENTION_DAYS", 90)
	v.SetDefault("NOTIFICATION_RETENTION_JOB_SCHEDULE", "@daily")

	// Empty disables the feature.
	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_EVENTS_TOPIC", "pricehive.events")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.CatalogCacheTTL = time.Duration(v.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))

	// DB_SOURCE is the URL form used by golang-migrate. Build one from the parts when unset.
	if strings.TrimSpace(cfg.DBSource) == "" {
		cfg.DBSource = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	}

	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, fmt.Errorf("FATAL: JWT_SECRET_KEY is not set. It is required to verify access tokens")
	}

	return &cfg, nil
}

// GORMDSN returns the key/value DSN understood by the gorm postgres driver.
func (c *Config) GORMDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
