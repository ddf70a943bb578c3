package config // package config loads application configuration from environment variables

import (
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values. Nested structs group
// related variables; every field maps to one environment variable.
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"development"`
	Host string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"APP_PORT" default:"8080"`

	DB        DBConfig
	JWT       JWTConfig
	Crawler   CrawlerConfig
	Queue     QueueConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// DBConfig carries MySQL connection parameters.
type DBConfig struct {
	User string `envconfig:"DB_USER" required:"true"`
	Pass string `envconfig:"DB_PASS"` // empty allowed
	Host string `envconfig:"DB_HOST" default:"127.0.0.1"`
	Port string `envconfig:"DB_PORT" default:"3306"`
	Name string `envconfig:"DB_NAME" required:"true"`
}

// JWTConfig controls token signing and password hashing.
type JWTConfig struct {
	Secret         string `envconfig:"JWT_SECRET" required:"true"`
	AccessTTLMin   int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`
	RefreshTTLDays int    `envconfig:"REFRESH_TOKEN_TTL_DAYS" default:"7"`
	BcryptCost     int    `envconfig:"BCRYPT_COST" default:"10"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTTLMin) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTTLDays) * 24 * time.Hour
}

// CrawlerConfig controls the startup job seeder.
type CrawlerConfig struct {
	Enabled   bool          `envconfig:"CRAWLER_ENABLED" default:"true"`
	BaseURL   string        `envconfig:"CRAWLER_BASE_URL" default:"https://www.saramin.co.kr/zf_user/search/recruit"`
	Keyword   string        `envconfig:"CRAWLER_KEYWORD" default:"백엔드"`
	Pages     int           `envconfig:"CRAWLER_PAGES" default:"5"`
	Workers   int           `envconfig:"CRAWLER_WORKERS" default:"4"`
	UserAgent string        `envconfig:"CRAWLER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	Timeout   time.Duration `envconfig:"CRAWLER_TIMEOUT" default:"15s"`
}

// QueueConfig points at the RabbitMQ broker. An empty URL disables
// event publishing and the notification consumer.
type QueueConfig struct {
	URL string `envconfig:"RABBITMQ_URL"`
}

// Load reads .env (if present) and then the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional outside development

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process config: %w", err)
	}
	cfg.RateLimit = cfg.RateLimit.normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.DB.User == "" || c.DB.Name == "" {
		return fmt.Errorf("DB_USER and DB_NAME are required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.JWT.AccessTTLMin < 1 || c.JWT.RefreshTTLDays < 1 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.JWT.BcryptCost < 4 || c.JWT.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.Crawler.Enabled && (c.Crawler.Pages < 1 || c.Crawler.Workers < 1) {
		return fmt.Errorf("CRAWLER_PAGES and CRAWLER_WORKERS must be at least 1")
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Addr is the listen address built from APP_HOST and APP_PORT.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}
