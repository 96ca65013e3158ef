package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

var (
	ErrInvalidCSRFKey     = errors.New("FL_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrMissingCSRFKey     = errors.New("FL_CSRF_KEY is required in production")
	ErrInvalidBackend     = errors.New("FL_SESSION_BACKEND must be memory or redis")
	ErrMissingRedisAddr   = errors.New("FL_REDIS_ADDR is required when FL_SESSION_BACKEND=redis")
	ErrInvalidEnvironment = errors.New("FL_ENV must be development, production or test")
)

// AdminConfig holds the credentials seeded when no user exists yet.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// MailConfig holds staff notification settings.
type MailConfig struct {
	ResendKey string
	From      string
	NotifyTo  []string
}

// SessionConfig holds session storage settings.
type SessionConfig struct {
	Backend   string
	RedisAddr string
	RedisPass string
	TTL       time.Duration
}

// Config holds all configuration.
type Config struct {
	Env                string
	Addr               string
	DBPath             string
	CSRFKey            []byte
	Location           *time.Location
	Admin              AdminConfig
	AllowRegistration  bool
	Session            SessionConfig
	RateLimitPerSecond int
	SeedDemo           bool
	Mail               MailConfig
	LogLevel           slog.Level
	SlowRequestMs      int
	SlowQueryMs        int
}

// IsProduction reports whether the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads a .env file when present, then builds Config from FL_* variables.
// PRE: none
// POST: Returns a validated Config or the first configuration error
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds Config from a lookup function.
// Tests pass a map-backed getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:    get("FL_ENV", EnvDevelopment),
		Addr:   get("FL_ADDR", ":8080"),
		DBPath: get("FL_DB_PATH", "fashionablylate.db"),
		Admin: AdminConfig{
			Name:     get("FL_ADMIN_NAME", "admin"),
			Email:    get("FL_ADMIN_EMAIL", "admin@example.com"),
			Password: get("FL_ADMIN_PASSWORD", "password"),
		},
		AllowRegistration: parseBool(getenv("FL_ALLOW_REGISTRATION"), false),
		Session: SessionConfig{
			Backend:   get("FL_SESSION_BACKEND", SessionBackendMemory),
			RedisAddr: get("FL_REDIS_ADDR", ""),
			RedisPass: getenv("FL_REDIS_PASSWORD"),
			TTL:       parseDuration(getenv("FL_SESSION_TTL"), 2*time.Hour),
		},
		RateLimitPerSecond: parseInt(getenv("FL_RATE_LIMIT"), 10),
		Mail: MailConfig{
			ResendKey: getenv("FL_RESEND_KEY"),
			From:      get("FL_MAIL_FROM", "FashionablyLate <noreply@example.com>"),
			NotifyTo:  splitList(getenv("FL_NOTIFY_TO")),
		},
		LogLevel:      parseLevel(getenv("FL_LOG_LEVEL")),
		SlowRequestMs: parseInt(getenv("FL_SLOW_REQUEST_MS"), 200),
		SlowQueryMs:   parseInt(getenv("FL_SLOW_QUERY_MS"), 50),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return Config{}, ErrInvalidEnvironment
	}
	cfg.SeedDemo = parseBool(getenv("FL_SEED_DEMO"), cfg.Env == EnvDevelopment)

	loc, err := time.LoadLocation(get("FL_TIMEZONE", "Asia/Tokyo"))
	if err != nil {
		return Config{}, fmt.Errorf("FL_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	key, err := loadCSRFKey(getenv("FL_CSRF_KEY"), cfg.IsProduction())
	if err != nil {
		return Config{}, err
	}
	cfg.CSRFKey = key

	switch cfg.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if cfg.Session.RedisAddr == "" {
			return Config{}, ErrMissingRedisAddr
		}
	default:
		return Config{}, ErrInvalidBackend
	}

	return cfg, nil
}

// loadCSRFKey decodes the hex key. Outside production a random key is generated.
func loadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrInvalidCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, ErrMissingCSRFKey
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_warning", "message", "using random CSRF key; set FL_CSRF_KEY to keep sessions across restarts")
	return key, nil
}

func parseBool(v string, fallback bool) bool {
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
