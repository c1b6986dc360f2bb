package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dlproxy/pkg/storage"
)

// Resolver maps a secret to object coordinates.
type Resolver interface {
	Resolve(ctx context.Context, host, secret string) (*Coordinates, error)
}

// AccessLogger records a successful access.
type AccessLogger interface {
	LogAccess(ctx context.Context, recordID uuid.UUID, data AccessData) error
}

// ObjectClient probes and presigns objects. *storage.Client implements it.
type ObjectClient interface {
	Exists(ctx context.Context, bucket, key string) error
	Presign(ctx context.Context, bucket, key string, ttl time.Duration, filename string) (*storage.PresignedURL, error)
}

// ClientSource hands out an object client for per-file overrides.
type ClientSource interface {
	ClientFor(o storage.Overrides) (ObjectClient, error)
}

// ClientSourceFunc adapts a function to ClientSource.
type ClientSourceFunc func(o storage.Overrides) (ObjectClient, error)

func (f ClientSourceFunc) ClientFor(o storage.Overrides) (ObjectClient, error) {
	return f(o)
}

// StoreClients adapts a storage.Store to ClientSource.
func StoreClients(s *storage.Store) ClientSource {
	return ClientSourceFunc(func(o storage.Overrides) (ObjectClient, error) {
		c, err := s.ClientFor(o)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Config tunes the redirect pipeline.
type Config struct {
	// PresignTTL is the lifetime of issued URLs.
	PresignTTL time.Duration
	// ProbeTimeout bounds the existence check.
	ProbeTimeout time.Duration
}

// Default pipeline settings.
const (
	DefaultPresignTTL   = 60 * time.Second
	DefaultProbeTimeout = 5 * time.Second
)

// Service runs the redirect pipeline:
// resolve secret, derive client, probe object, presign, log access.
type Service struct {
	resolver Resolver
	log      AccessLogger
	clients  ClientSource
	now      func() time.Time
	cfg      Config
}

// NewService validates cfg and returns a Service.
func NewService(resolver Resolver, log AccessLogger, clients ClientSource, cfg Config) (*Service, error) {
	if cfg.PresignTTL == 0 {
		cfg.PresignTTL = DefaultPresignTTL
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.PresignTTL < time.Second || cfg.PresignTTL > storage.MaxPresignTTL {
		return nil, fmt.Errorf("%w: presign ttl %s outside [1s, %s]", ErrInvalidConfig, cfg.PresignTTL, storage.MaxPresignTTL)
	}
	if resolver == nil || log == nil || clients == nil {
		return nil, fmt.Errorf("%w: missing dependency", ErrInvalidConfig)
	}

	return &Service{
		resolver: resolver,
		log:      log,
		clients:  clients,
		now:      time.Now,
		cfg:      cfg,
	}, nil
}

// Config returns the effective pipeline settings.
func (s *Service) Config() Config {
	return s.cfg
}

// Redirect runs the pipeline for one request.
// The access log is written only after a URL was issued, and a logging
// failure fails the request. Errors are *StageError values;
// errors.Is(err, ErrUnauthorized) identifies the unauthorized class.
func (s *Service) Redirect(ctx context.Context, req Request) (*Result, error) {
	t := stageTimer{start: s.now(), now: s.now}

	coords, err := s.resolver.Resolve(ctx, req.Host, req.Secret)
	if err != nil {
		return nil, t.fail(StageStart, err)
	}
	t.reached(StageSecretResolved)

	client, err := s.clients.ClientFor(coords.Overrides)
	if err != nil {
		return nil, t.fail(StageSecretResolved, fmt.Errorf("%w: %w", ErrClientFailed, err))
	}
	t.reached(StageObjectConfigured)

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	err = client.Exists(probeCtx, coords.Bucket, coords.ObjectKey)
	cancel()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, t.fail(StageObjectConfigured, err)
	}
	t.reached(StageExistenceConfirmed)

	filename := coords.Filename(req.PreferredName)
	presigned, err := client.Presign(ctx, coords.Bucket, coords.ObjectKey, s.cfg.PresignTTL, filename)
	if err != nil {
		return nil, t.fail(StageExistenceConfirmed, err)
	}
	t.reached(StagePresigned)

	if err := s.log.LogAccess(ctx, coords.RecordID, req.AccessData); err != nil {
		return nil, t.fail(StagePresigned, err)
	}
	t.reached(StageLogged)

	t.reached(StageRedirected)
	redirectsTotal.WithLabelValues(outcomeRedirected).Inc()
	return &Result{
		URL:       presigned.URL,
		ExpiresAt: presigned.ExpiresAt,
		Filename:  filename,
		RecordID:  coords.RecordID,
	}, nil
}

// stageTimer observes time from the pipeline start to each stage.
type stageTimer struct {
	start time.Time
	now   func() time.Time
}

func (t stageTimer) reached(s Stage) {
	stageDuration.WithLabelValues(s.String()).Observe(t.now().Sub(t.start).Seconds())
}

func (t stageTimer) fail(last Stage, err error) error {
	outcome := outcomeError
	if errors.Is(err, ErrUnauthorized) {
		outcome = outcomeUnauthorized
	}
	redirectsTotal.WithLabelValues(outcome).Inc()
	return &StageError{Stage: last, Err: err}
}
