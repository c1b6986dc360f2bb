package main

import (
	"log/slog"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIRECT_HOMEPAGE": "https://example.com",
		"DATABASE_URL":      "postgres://u:p@localhost:5432/db?sslmode=disable",
	}
}

func with(overrides map[string]string) map[string]string {
	e := baseEnv()
	maps.Copy(e, overrides)
	return e
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(baseEnv())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, ":9090", cfg.TelemetryAddress)
	require.Equal(t, "./assets", cfg.StaticDir)
	require.Empty(t, cfg.TemplatesDir)
	require.Equal(t, 60*time.Second, cfg.PresignedTTL.Duration())
	require.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	require.InDelta(t, 2.0, cfg.RateLimitRPS, 0)
	require.Equal(t, 8, cfg.RateLimitBurst)
	require.False(t, cfg.TrustProxyHeaders)
	require.False(t, cfg.Storage.PathStyle)
	require.False(t, cfg.DB.AutoMigrate)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "production", cfg.Sentry.Environment)
	require.Equal(t, slog.LevelWarn, cfg.Sentry.MinLevel)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "integer seconds ttl",
			env:  with(map[string]string{"PRESIGNED_TTL": "300"}),
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, 5*time.Minute, cfg.PresignedTTL.Duration())
			},
		},
		{
			name: "duration ttl",
			env:  with(map[string]string{"PRESIGNED_TTL": "2m"}),
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, 2*time.Minute, cfg.PresignedTTL.Duration())
			},
		},
		{
			name: "storage overrides",
			env: with(map[string]string{
				"AWS_S3_FORCE_PATH_STYLE": "true",
				"AWS_ENDPOINT_URL":        "http://minio:9000",
				"AWS_REGION":              "eu-central-1",
				"AWS_ACCESS_KEY_ID":       "key",
				"AWS_SECRET_ACCESS_KEY":   "secret",
			}),
			check: func(t *testing.T, cfg Config) {
				require.True(t, cfg.Storage.PathStyle)
				require.Equal(t, "http://minio:9000", cfg.Storage.Endpoint)
				require.Equal(t, "eu-central-1", cfg.Storage.Region)
			},
		},
		{
			name: "rate limit disabled",
			env:  with(map[string]string{"RATE_LIMIT_RPS": "0", "RATE_LIMIT_BURST": "0"}),
			check: func(t *testing.T, cfg Config) {
				require.Zero(t, cfg.RateLimitRPS)
			},
		},
		{name: "missing homepage", env: map[string]string{"DATABASE_URL": "postgres://localhost/db"}, wantErr: true},
		{name: "missing database url", env: map[string]string{"REDIRECT_HOMEPAGE": "https://example.com"}, wantErr: true},
		{name: "relative homepage", env: with(map[string]string{"REDIRECT_HOMEPAGE": "/home"}), wantErr: true},
		{name: "zero ttl", env: with(map[string]string{"PRESIGNED_TTL": "0"}), wantErr: true},
		{name: "ttl over seven days", env: with(map[string]string{"PRESIGNED_TTL": "604801"}), wantErr: true},
		{name: "garbage ttl", env: with(map[string]string{"PRESIGNED_TTL": "soon"}), wantErr: true},
		{name: "half credentials", env: with(map[string]string{"AWS_ACCESS_KEY_ID": "key"}), wantErr: true},
		{name: "bad log level", env: with(map[string]string{"LOG_LEVEL": "loud"}), wantErr: true},
		{name: "negative rps", env: with(map[string]string{"RATE_LIMIT_RPS": "-1"}), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := loadConfig(tt.env)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSeconds_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"60", time.Minute, false},
		{" 90 ", 90 * time.Second, false},
		{"1h", time.Hour, false},
		{"1500ms", 1500 * time.Millisecond, false},
		{"", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var s seconds
			err := s.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, s.Duration())
		})
	}
}
