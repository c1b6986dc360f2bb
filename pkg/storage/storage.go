package storage

import (
	"fmt"
	"time"
)

// Config holds the process-wide S3-compatible storage defaults.
// Per-request settings are derived from it with Derive.
type Config struct {
	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"AWS_ENDPOINT_URL"`

	// Region is the AWS region. Falls back to the shared AWS config, then us-east-1.
	Region string `env:"AWS_REGION"`

	// AccessKey and SecretKey select static credentials.
	// When empty, the AWS default credential chain is used.
	AccessKey    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken string `env:"AWS_SESSION_TOKEN"`

	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool `env:"AWS_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// MaxAttempts bounds SDK retries for a single operation.
	MaxAttempts int `env:"STORAGE_MAX_ATTEMPTS" envDefault:"3"`

	// ClientCacheSize is the number of distinct endpoint/region/addressing
	// combinations kept as ready clients.
	ClientCacheSize int `env:"STORAGE_CLIENT_CACHE_SIZE" envDefault:"32"`

	// ClientCacheTTL is how long a pooled client lives; it is rebuilt this long after creation.
	ClientCacheTTL time.Duration `env:"STORAGE_CLIENT_CACHE_TTL" envDefault:"1h"`
}

// Overrides are optional per-tenant connection settings.
// A nil field inherits the corresponding Config field.
type Overrides struct {
	Endpoint  *string
	Region    *string
	PathStyle *bool
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Endpoint == nil && o.Region == nil && o.PathStyle == nil
}

// PresignedURL is a time-limited retrieval URL.
type PresignedURL struct {
	ExpiresAt time.Time
	URL       string
}

// Default configuration values.
const (
	DefaultRegion          = "us-east-1"
	DefaultMaxAttempts     = 3
	DefaultClientCacheSize = 32
	DefaultClientCacheTTL  = time.Hour

	// MaxPresignTTL is the longest expiry SigV4 accepts.
	MaxPresignTTL = 7 * 24 * time.Hour
)

// Derive returns a copy of c with every non-nil override applied.
// Each field is replaced independently; c is never modified.
func (c Config) Derive(o Overrides) Config {
	if o.Endpoint != nil {
		c.Endpoint = *o.Endpoint
	}
	if o.Region != nil {
		c.Region = *o.Region
	}
	if o.PathStyle != nil {
		c.PathStyle = *o.PathStyle
	}
	return c
}

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.ClientCacheSize <= 0 {
		c.ClientCacheSize = DefaultClientCacheSize
	}
	if c.ClientCacheTTL <= 0 {
		c.ClientCacheTTL = DefaultClientCacheTTL
	}
}

// Validate checks that credentials are either fully set or fully absent.
func (c *Config) Validate() error {
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return ErrInvalidConfig
	}
	return nil
}

// clientKey identifies the connection-relevant part of a derived Config.
type clientKey struct {
	endpoint  string
	region    string
	pathStyle bool
}

func (c Config) key() clientKey {
	return clientKey{endpoint: c.Endpoint, region: c.Region, pathStyle: c.PathStyle}
}

// String quotes each part so distinct keys never share a representation.
func (k clientKey) String() string {
	return fmt.Sprintf("%q|%q|%t", k.endpoint, k.region, k.pathStyle)
}
