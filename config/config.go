package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger         `mapstructure:"logger"`
	DB        Database       `mapstructure:"database"`
	API       API            `mapstructure:"api"`
	Auth      Auth           `mapstructure:"auth"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Cache     Cache          `mapstructure:"cache"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
	Storage   Storage        `mapstructure:"storage"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type API struct {
	Port      int       `mapstructure:"port"`
	AdminKey  string    `mapstructure:"admin_key"`
	BodyLimit string    `mapstructure:"body_limit"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
}

type RateLimit struct {
	RequestPerSecond float64       `mapstructure:"request_per_second"`
	Burst            int           `mapstructure:"burst"`
	ExpiresIn        time.Duration `mapstructure:"expires_in"`
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	CronSpec        string        `mapstructure:"cron_spec"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	SettingsTTL       time.Duration `mapstructure:"settings_ttl"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	AlertChatID               string        `mapstructure:"alert_chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	WebhookSecret             string        `mapstructure:"webhook_secret"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
}

type Storage struct {
	BaseURL        string        `mapstructure:"base_url"`
	PublicURL      string        `mapstructure:"public_url"`
	Bucket         string        `mapstructure:"bucket"`
	ServiceKey     string        `mapstructure:"service_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.log_level", "Warn")
	viper.SetDefault("database.migrations_path", "file://migrations")

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.body_limit", "12M")
	viper.SetDefault("api.rate_limit.request_per_second", 10)
	viper.SetDefault("api.rate_limit.burst", 30)
	viper.SetDefault("api.rate_limit.expires_in", 3*time.Minute)

	viper.SetDefault("auth.token_ttl", 24*time.Hour)
	viper.SetDefault("auth.issuer", "trading-journal")

	viper.SetDefault("scheduler.cron_spec", "@every 1m")
	viper.SetDefault("scheduler.max_concurrency", 2)
	viper.SetDefault("scheduler.timeout_duration", 5*time.Minute)

	viper.SetDefault("cache.default_expiration", 10*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 15*time.Minute)
	viper.SetDefault("cache.settings_ttl", 5*time.Minute)

	viper.SetDefault("telegram.timeout_duration", 10*time.Second)
	viper.SetDefault("telegram.max_global_request_per_second", 30)
	viper.SetDefault("telegram.max_user_request_per_second", 1)
	viper.SetDefault("telegram.ratelimit_expire_duration", 10*time.Minute)
	viper.SetDefault("telegram.rate_limit_cleanup_duration", 5*time.Minute)

	viper.SetDefault("storage.bucket", "screenshots")
	viper.SetDefault("storage.timeout", 30*time.Second)
	viper.SetDefault("storage.max_upload_bytes", 10<<20)
}

func Load() (*Config, error) {
	// .env is optional, real environment variables always win
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Scheduler.MaxConcurrency <= 0 {
		return fmt.Errorf("scheduler.max_concurrency must be positive")
	}
	return nil
}

// DSN returns the url form used by golang-migrate. Credentials are escaped.
func (d Database) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return dsn.String()
}
