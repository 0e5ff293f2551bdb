package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Secret struct {
	value []byte
}

func NewSecret(s string) Secret {
	return Secret{value: []byte(s)}
}
func (s Secret) Value() string {
	return string(s.value)
}
func (s Secret) Wipe() {
	for i := range s.value {
		s.value[i] = 0
	}
}
func (s Secret) String() string {
	return "***REDACTED***"
}

type Cfg struct {
	Port             string
	Environment      string
	LogLevel         string
	DataDir          string
	CredentialsPath  string
	SessionKey       Secret
	SessionTTL       time.Duration
	RegistrationCode Secret
	RedisURL         string
	RedisTLS         bool
	RedisUsername    string
	RedisPassword    Secret
	RedisTimeout     time.Duration
	RenderCacheSize  int
	MaxDocumentSize  int64
	RateLimit        RateLimitCfg
	MetricsUser      string
	MetricsPass      Secret
}

type RateLimitCfg struct {
	SigninRPM   int
	SigninBurst int
}

func Load() (*Cfg, error) {
	c := &Cfg{}
	c.Port = getEnv("PORT", "8080")
	c.Environment = getEnv("ENVIRONMENT", "development")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	// Two path roots: the test environment gets its own document directory
	// and credential file so suites never touch production data.
	if c.Environment == "test" {
		c.DataDir = getEnv("DATA_DIR", filepath.Join("test", "data"))
		c.CredentialsPath = getEnv("CREDENTIALS_PATH", filepath.Join("test", "users.yml"))
	} else {
		c.DataDir = getEnv("DATA_DIR", "data")
		c.CredentialsPath = getEnv("CREDENTIALS_PATH", "users.yml")
	}

	c.SessionKey = NewSecret(getEnv("SESSION_KEY", ""))
	var err error
	c.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	c.RegistrationCode = NewSecret(getEnv("REGISTRATION_CODE", "inside"))

	c.RedisURL = getEnv("REDIS_URL", "")
	c.RedisTLS = getEnv("REDIS_TLS", "false") == "true"
	c.RedisUsername = getEnv("REDIS_USERNAME", "")
	c.RedisPassword = NewSecret(getEnv("REDIS_PASSWORD", ""))
	c.RedisTimeout, err = getDuration("REDIS_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	c.RenderCacheSize, err = getInt("RENDER_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	c.MaxDocumentSize, err = getInt64("MAX_DOCUMENT_SIZE", 1024*1024)
	if err != nil {
		return nil, err
	}
	c.RateLimit.SigninRPM, err = getInt("SIGNIN_RATE_LIMIT_RPM", 30)
	if err != nil {
		return nil, err
	}
	c.RateLimit.SigninBurst, err = getInt("SIGNIN_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	c.MetricsUser = getEnv("METRICS_USER", "")
	c.MetricsPass = NewSecret(getEnv("METRICS_PASS", ""))
	return c, nil
}

func Validate(c *Cfg) error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("PORT must be a number")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.CredentialsPath == "" {
		return errors.New("CREDENTIALS_PATH is required")
	}
	switch c.Environment {
	case "production", "development", "test":
	default:
		return fmt.Errorf("unknown ENVIRONMENT %q", c.Environment)
	}
	if c.Environment == "production" {
		if len(c.SessionKey.Value()) < 32 {
			return errors.New("SESSION_KEY must be at least 32 bytes in production")
		}
		if c.RegistrationCode.Value() == "inside" {
			return errors.New("REGISTRATION_CODE must be changed from the default in production")
		}
	}
	if c.SessionTTL < time.Minute {
		return errors.New("SESSION_TTL must be at least 1 minute")
	}
	if c.RedisURL != "" {
		if !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
			return errors.New("REDIS_URL must start with redis:// or rediss://")
		}
		if strings.HasPrefix(c.RedisURL, "rediss://") && !c.RedisTLS {
			return errors.New("REDIS_URL uses rediss:// but REDIS_TLS=false")
		}
	}
	if c.RenderCacheSize <= 0 {
		return errors.New("RENDER_CACHE_SIZE must be positive")
	}
	if c.MaxDocumentSize <= 0 {
		return errors.New("MAX_DOCUMENT_SIZE must be positive")
	}
	if c.MaxDocumentSize > 10*1024*1024 {
		return errors.New("MAX_DOCUMENT_SIZE cannot exceed 10MB")
	}
	if c.RateLimit.SigninRPM <= 0 {
		return errors.New("SIGNIN_RATE_LIMIT_RPM must be positive")
	}
	return nil
}

func (c *Cfg) Wipe() {
	c.SessionKey.Wipe()
	c.RegistrationCode.Wipe()
	c.RedisPassword.Wipe()
	c.MetricsPass.Wipe()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
func getInt(key string, fallback int) (int, error) {
	s := getEnv(key, "")
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return v, nil
}
func getInt64(key string, fallback int64) (int64, error) {
	s := getEnv(key, "")
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return v, nil
}
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return v, nil
}
