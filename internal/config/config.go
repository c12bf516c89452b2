package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTSecret = "sk-change-me"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Security SecurityConfig
	Admin    AdminConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the token deny-list.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SecurityConfig defines token and password parameters.
type SecurityConfig struct {
	JWTIssuer                string
	JWTSecretKey             string
	JWTAccessTokenExpireSecs int
	RefreshTokenExpireSecs   int
	PasswordBcryptRounds     int
	AllowedHosts             []string
	BackendCORSOrigins       []string
}

// AdminConfig describes the bootstrap administrator account.
type AdminConfig struct {
	CreateDefault bool
	Email         string
	Password      string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "accounts-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("POSTGRES_DSN", databaseDSNFromParts()),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 15)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 5)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 600)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Security: SecurityConfig{
			JWTIssuer:                getEnv("SECURITY_JWT_ISSUER", "my-app"),
			JWTSecretKey:             getEnv("SECURITY_JWT_SECRET_KEY", defaultJWTSecret),
			JWTAccessTokenExpireSecs: getEnvAsInt("SECURITY_JWT_ACCESS_TOKEN_EXPIRE_SECS", 24*3600),
			RefreshTokenExpireSecs:   getEnvAsInt("SECURITY_REFRESH_TOKEN_EXPIRE_SECS", 28*24*3600),
			PasswordBcryptRounds:     getEnvAsInt("SECURITY_PASSWORD_BCRYPT_ROUNDS", 12),
			AllowedHosts:             getEnvAsSlice("SECURITY_ALLOWED_HOSTS", []string{"localhost", "127.0.0.1"}),
			BackendCORSOrigins: getEnvAsSlice("SECURITY_BACKEND_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}),
		},
		Admin: AdminConfig{
			CreateDefault: getEnvAsBool("CREATE_DEFAULT_ADMIN", false),
			Email:         getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password:      getEnv("ADMIN_PASSWORD", "admin123"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the auth core cannot run with.
func (c *Config) Validate() error {
	s := c.Security
	var errs []error
	if s.JWTSecretKey == "" {
		errs = append(errs, errors.New("SECURITY_JWT_SECRET_KEY must not be empty"))
	}
	if s.JWTIssuer == "" {
		errs = append(errs, errors.New("SECURITY_JWT_ISSUER must not be empty"))
	}
	if s.JWTAccessTokenExpireSecs <= 0 {
		errs = append(errs, fmt.Errorf("SECURITY_JWT_ACCESS_TOKEN_EXPIRE_SECS must be positive, got %d", s.JWTAccessTokenExpireSecs))
	}
	if s.RefreshTokenExpireSecs <= 0 {
		errs = append(errs, fmt.Errorf("SECURITY_REFRESH_TOKEN_EXPIRE_SECS must be positive, got %d", s.RefreshTokenExpireSecs))
	}
	if s.PasswordBcryptRounds < bcrypt.MinCost || s.PasswordBcryptRounds > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("SECURITY_PASSWORD_BCRYPT_ROUNDS must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, s.PasswordBcryptRounds))
	}

	if !c.App.IsDevelopment() {
		if s.JWTSecretKey == defaultJWTSecret {
			errs = append(errs, fmt.Errorf("SECURITY_JWT_SECRET_KEY must be explicitly set in %q mode", c.App.Env))
		} else if len(s.JWTSecretKey) < 32 {
			errs = append(errs, fmt.Errorf("SECURITY_JWT_SECRET_KEY must be at least 32 characters long, got %d", len(s.JWTSecretKey)))
		}
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with development defaults.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the access token lifetime.
func (s SecurityConfig) AccessTokenTTL() time.Duration {
	return time.Duration(s.JWTAccessTokenExpireSecs) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime.
func (s SecurityConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(s.RefreshTokenExpireSecs) * time.Second
}

func databaseDSNFromParts() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DATABASE_USERNAME", "postgres"), getEnv("DATABASE_PASSWORD", "postgres123")),
		Host:   fmt.Sprintf("%s:%s", getEnv("DATABASE_HOSTNAME", "localhost"), getEnv("DATABASE_PORT", "5432")),
		Path:   "/" + getEnv("DATABASE_DB", "accounts"),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsSlice reads a comma separated list, trimming blanks.
func getEnvAsSlice(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
