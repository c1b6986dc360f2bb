package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/dlproxy/pkg/db"
	"github.com/dmitrymomot/dlproxy/pkg/logger"
	"github.com/dmitrymomot/dlproxy/pkg/storage"
)

var errInvalidConfig = errors.New("config: invalid")

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPAddress      string `env:"HTTP_ADDRESS" envDefault:":8080"`
	TelemetryAddress string `env:"TELEMETRY_ADDRESS" envDefault:":9090"`
	RedirectHomepage string `env:"REDIRECT_HOMEPAGE,required"`
	StaticDir        string `env:"STATIC_DIR" envDefault:"./assets"`
	TemplatesDir     string `env:"TEMPLATES_DIR"`

	PresignedTTL    seconds       `env:"PRESIGNED_TTL" envDefault:"60"`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	RateLimitRPS      float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst    int     `env:"RATE_LIMIT_BURST" envDefault:"8"`
	TrustProxyHeaders bool    `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	DB      db.Config
	Storage storage.Config
	Log     logger.Config
	Sentry  logger.SentryConfig
}

// loadConfig parses environ (the process environment when nil) into a Config and validates it.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(errInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.RedirectHomepage); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("REDIRECT_HOMEPAGE must be an absolute URL, got %q", c.RedirectHomepage))
	}
	if ttl := c.PresignedTTL.Duration(); ttl < time.Second || ttl > storage.MaxPresignTTL {
		errs = append(errs, fmt.Errorf("PRESIGNED_TTL must be between 1s and %s, got %s", storage.MaxPresignTTL, ttl))
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("PROBE_TIMEOUT must be positive"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{errInvalidConfig}, errs...)...)
	}
	return nil
}

// seconds is a duration given either as integer seconds ("60") or a Go duration ("1m").
type seconds time.Duration

func (s *seconds) UnmarshalText(b []byte) error {
	v := strings.TrimSpace(string(b))
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*s = seconds(time.Duration(n) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q: use seconds or a Go duration", v)
	}
	*s = seconds(d)
	return nil
}

func (s seconds) Duration() time.Duration {
	return time.Duration(s)
}
