package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string `env:"PORT" env-default:"5000"`
	AppEnv         string `env:"APP_ENV" env-default:"development"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"info"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" env-default:""`

	Mongo     MongoConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig

	TokenCleanupSchedule string `env:"TOKEN_CLEANUP_SCHEDULE" env-default:"@hourly"`
	SeedSampleCourses    bool   `env:"SEED_SAMPLE_COURSES" env-default:"false"`
}

type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"DATABASE_NAME" env-default:"course_marketplace"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_EXPIRE" env-default:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_EXPIRE" env-default:"168h"`
}

// AdminConfig seeds the first admin account when both email and password are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME" env-default:"Admin User"`
}

// RedisConfig enables the catalog read cache when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"60s"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Mongo.URI) == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required"))
	} else if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token expiry durations must be positive"))
	}
	if c.AppEnv != "development" && c.AppEnv != "production" {
		errs = append(errs, fmt.Errorf("invalid APP_ENV %q (must be development or production)", c.AppEnv))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Origins() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
