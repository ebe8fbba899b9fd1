package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOSPITAL_HTTP_PORT",
		"HOSPITAL_SQLITE_DSN",
		"HOSPITAL_JWT_SECRET",
		"HOSPITAL_TOKEN_TTL",
		"HOSPITAL_CREATE_DEFAULT_ADMIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOSPITAL_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected port: %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "hospital.db" {
		t.Fatalf("unexpected dsn: %q", cfg.SQLiteDSN)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("unexpected secret: %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl: %v", cfg.TokenTTL)
	}
	if cfg.CreateDefaultAdmin {
		t.Fatal("expected seeding to default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOSPITAL_HTTP_PORT", "9090")
	t.Setenv("HOSPITAL_SQLITE_DSN", "/var/lib/hospital/admin.db")
	t.Setenv("HOSPITAL_JWT_SECRET", "  padded-secret  ")
	t.Setenv("HOSPITAL_TOKEN_TTL", "2h")
	t.Setenv("HOSPITAL_CREATE_DEFAULT_ADMIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Fatalf("unexpected port: %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "/var/lib/hospital/admin.db" {
		t.Fatalf("unexpected dsn: %q", cfg.SQLiteDSN)
	}
	if cfg.JWTSecret != "padded-secret" {
		t.Fatalf("expected trimmed secret, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("unexpected ttl: %v", cfg.TokenTTL)
	}
	if !cfg.CreateDefaultAdmin {
		t.Fatal("expected seeding enabled")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error without a JWT secret")
	}
	if !strings.Contains(err.Error(), "required environment variables are not set") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "HOSPITAL_JWT_SECRET") {
		t.Fatalf("expected the variable to be named: %v", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "HOSPITAL_HTTP_PORT", "eight-thousand"},
		{"negative port", "HOSPITAL_HTTP_PORT", "-1"},
		{"zero port", "HOSPITAL_HTTP_PORT", "0"},
		{"malformed ttl", "HOSPITAL_TOKEN_TTL", "30minutes"},
		{"negative ttl", "HOSPITAL_TOKEN_TTL", "-5m"},
		{"malformed bool", "HOSPITAL_CREATE_DEFAULT_ADMIN", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOSPITAL_JWT_SECRET", "test-secret")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), "environment variables have invalid values") {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected the variable to be named: %v", err)
			}
		})
	}
}
