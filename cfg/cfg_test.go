package cfg

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != "8080" {
		t.Errorf("Port = %q, want 8080", c.Port)
	}
	if c.Environment != "development" {
		t.Errorf("Environment = %q, want development", c.Environment)
	}
	if c.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", c.DataDir)
	}
	if c.CredentialsPath != "users.yml" {
		t.Errorf("CredentialsPath = %q, want users.yml", c.CredentialsPath)
	}
	if c.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", c.SessionTTL)
	}
	if c.RegistrationCode.Value() != "inside" {
		t.Error("default registration code mismatch")
	}
	if c.RenderCacheSize != 256 {
		t.Errorf("RenderCacheSize = %d, want 256", c.RenderCacheSize)
	}
}

func TestLoadTestEnvironmentPaths(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.DataDir != filepath.Join("test", "data") {
		t.Errorf("DataDir = %q, want test/data", c.DataDir)
	}
	if c.CredentialsPath != filepath.Join("test", "users.yml") {
		t.Errorf("CredentialsPath = %q, want test/users.yml", c.CredentialsPath)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed SESSION_TTL")
	}
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("RENDER_CACHE_SIZE", "many")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed RENDER_CACHE_SIZE")
	}
}

func validCfg() *Cfg {
	return &Cfg{
		Port:             "8080",
		Environment:      "development",
		LogLevel:         "info",
		DataDir:          "data",
		CredentialsPath:  "users.yml",
		SessionKey:       NewSecret("0123456789abcdef0123456789abcdef"),
		SessionTTL:       24 * time.Hour,
		RegistrationCode: NewSecret("inside"),
		RenderCacheSize:  256,
		MaxDocumentSize:  1024 * 1024,
		RateLimit:        RateLimitCfg{SigninRPM: 30, SigninBurst: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Cfg)
		wantErr string
	}{
		{"valid", func(c *Cfg) {}, ""},
		{"empty port", func(c *Cfg) { c.Port = "" }, "PORT"},
		{"non-numeric port", func(c *Cfg) { c.Port = "eighty" }, "PORT"},
		{"empty data dir", func(c *Cfg) { c.DataDir = "" }, "DATA_DIR"},
		{"empty credentials path", func(c *Cfg) { c.CredentialsPath = "" }, "CREDENTIALS_PATH"},
		{"unknown environment", func(c *Cfg) { c.Environment = "staging" }, "ENVIRONMENT"},
		{"short session ttl", func(c *Cfg) { c.SessionTTL = time.Second }, "SESSION_TTL"},
		{"bad redis scheme", func(c *Cfg) { c.RedisURL = "http://localhost" }, "REDIS_URL"},
		{"rediss without tls", func(c *Cfg) { c.RedisURL = "rediss://localhost"; c.RedisTLS = false }, "REDIS_TLS"},
		{"zero cache size", func(c *Cfg) { c.RenderCacheSize = 0 }, "RENDER_CACHE_SIZE"},
		{"zero max size", func(c *Cfg) { c.MaxDocumentSize = 0 }, "MAX_DOCUMENT_SIZE"},
		{"oversized max size", func(c *Cfg) { c.MaxDocumentSize = 20 * 1024 * 1024 }, "MAX_DOCUMENT_SIZE"},
		{"zero signin rpm", func(c *Cfg) { c.RateLimit.SigninRPM = 0 }, "SIGNIN_RATE_LIMIT_RPM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCfg()
			tt.mutate(c)
			err := Validate(c)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProduction(t *testing.T) {
	c := validCfg()
	c.Environment = "production"
	c.RegistrationCode = NewSecret("rotated-code")
	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.SessionKey = NewSecret("short")
	if err := Validate(c); err == nil {
		t.Error("expected error for short production session key")
	}

	c = validCfg()
	c.Environment = "production"
	if err := Validate(c); err == nil {
		t.Error("expected error for default registration code in production")
	}
}

func TestSecretRedaction(t *testing.T) {
	s := NewSecret("hunter2")
	if s.String() != "***REDACTED***" {
		t.Errorf("String() = %q, must never expose the value", s.String())
	}
	if s.Value() != "hunter2" {
		t.Errorf("Value() = %q, want hunter2", s.Value())
	}
	s.Wipe()
	if strings.Contains(s.Value(), "hunter2") {
		t.Error("Wipe() left the value readable")
	}
}
