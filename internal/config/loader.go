package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the hospital
// administration service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	JWTSecret          string
	TokenTTL           time.Duration
	CreateDefaultAdmin bool
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values. The JWT secret has no default; tokens signed with a
// guessable key would undermine authentication entirely.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "hospital.db",
		TokenTTL:           30 * time.Minute,
		CreateDefaultAdmin: false,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("HOSPITAL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "HOSPITAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("HOSPITAL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("HOSPITAL_JWT_SECRET")); secret == "" {
		missing = append(missing, "HOSPITAL_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HOSPITAL_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HOSPITAL_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("HOSPITAL_CREATE_DEFAULT_ADMIN")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "HOSPITAL_CREATE_DEFAULT_ADMIN")
		} else {
			cfg.CreateDefaultAdmin = seed
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
