// Package config loads the apigate service configuration from YAML with
// sensible defaults, so the binary runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// JWTSecretEnv overrides auth.jwtSecret so the secret can stay out of the
// config file.
const JWTSecretEnv = "APIGATE_JWT_SECRET"

type Server struct {
	ListenAddress string `yaml:"listenAddress"`
	// TrustProxy controls whether X-Forwarded-For is honored for client
	// identity. Leave false unless a proxy you control sits in front.
	TrustProxy bool `yaml:"trustProxy"`
}

type RateLimit struct {
	// Rate is tokens refilled per second.
	Rate int64 `yaml:"rate"`
	// Burst is the bucket capacity.
	Burst int64 `yaml:"burst"`
	// Cost is the tokens charged per request.
	Cost float64 `yaml:"cost"`
	// SweepInterval and MaxIdle control reaping of idle buckets,
	// as time.ParseDuration strings (e.g. "1m", "5m").
	SweepInterval string `yaml:"sweepInterval"`
	MaxIdle       string `yaml:"maxIdle"`
}

type Auth struct {
	JWTSecret string `yaml:"jwtSecret"`
	// SessionTTL is a time.ParseDuration string (e.g. "12h").
	SessionTTL string `yaml:"sessionTTL"`
	// Users maps username to password for the demo credential store.
	Users map[string]string `yaml:"users"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Auth      Auth      `yaml:"auth"`
}

func Default() Config {
	return Config{
		Server: Server{
			ListenAddress: ":8080",
		},
		RateLimit: RateLimit{
			Rate:  10,
			Burst: 50,
			Cost:  1,
		},
	}
}

// Load reads the config at path, layering it over Default. An empty path
// yields the defaults. The JWT secret may be overridden via JWTSecretEnv.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if secret := os.Getenv(JWTSecretEnv); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RateLimit.Rate <= 0 {
		return fmt.Errorf("rateLimit.rate must be positive, got %d", c.RateLimit.Rate)
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rateLimit.burst must be positive, got %d", c.RateLimit.Burst)
	}
	if c.RateLimit.Cost <= 0 {
		return fmt.Errorf("rateLimit.cost must be positive, got %v", c.RateLimit.Cost)
	}
	for _, d := range []string{c.RateLimit.SweepInterval, c.RateLimit.MaxIdle, c.Auth.SessionTTL} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}
	return nil
}

func (r RateLimit) SweepIntervalOrDefault() time.Duration {
	return durationOr(r.SweepInterval, time.Minute)
}

func (r RateLimit) MaxIdleOrDefault() time.Duration {
	return durationOr(r.MaxIdle, 5*time.Minute)
}

func (a Auth) SessionTTLOrDefault() time.Duration {
	return durationOr(a.SessionTTL, 12*time.Hour)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
