package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"APP_ENV" env-default:"dev"`
	Port        int    `env:"PORT" env-default:"8080"`
	StoreDriver string `env:"STORE_DRIVER" env-default:"postgres"`

	DBURL         string `env:"DATABASE_URL"`
	DBHost        string `env:"DB_HOST" env-default:"127.0.0.1"`
	DBPort        string `env:"DB_PORT" env-default:"5432"`
	DBUser        string `env:"DB_USER" env-default:"taskhub"`
	DBPassword    string `env:"DB_PASSWORD" env-default:"taskhub"`
	DBName        string `env:"DB_NAME" env-default:"taskhub"`
	DBSSLMode     string `env:"DB_SSLMODE" env-default:"disable"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" env-default:"5"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"true"`

	JWTSecret           string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" env-default:"60"`

	AdminEmail     string `env:"ADMIN_EMAIL"`
	AdminPassword  string `env:"ADMIN_PASSWORD"`
	AdminFirstName string `env:"ADMIN_FIRST_NAME" env-default:"System"`
	AdminLastName  string `env:"ADMIN_LAST_NAME" env-default:"Admin"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	OtelEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelServiceName string `env:"OTEL_SERVICE_NAME" env-default:"taskhub"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" env-default:"1048576"`

	AuthRateLimit         int `env:"AUTH_RATE_LIMIT" env-default:"20"`
	AuthRateWindowSeconds int `env:"AUTH_RATE_WINDOW_SECONDS" env-default:"60"`

	RequireAdminForUsers bool   `env:"REQUIRE_ADMIN_FOR_USERS" env-default:"false"`
	DisplayTimezone      string `env:"DISPLAY_TIMEZONE" env-default:"UTC"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}

	if c.Env == "prod" && c.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in prod")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}

	return nil
}

// DatabaseURL prefers DATABASE_URL and otherwise assembles one from the DB_* parts.
func (c Config) DatabaseURL() string {
	if c.DBURL != "" {
		return c.DBURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}

	return u.String()
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowSeconds) * time.Second
}

func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.DisplayTimezone)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
