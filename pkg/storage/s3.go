package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Store owns the process-wide AWS configuration and hands out S3 clients
// for derived per-request configurations.
// Clients share one HTTP transport, so keep-alive connections are pooled
// across tenants that resolve to the same endpoint.
type Store struct {
	aws     aws.Config
	clients *expirable.LRU[clientKey, *Client]
	group   singleflight.Group
	now     func() time.Time
	cfg     Config
}

// New loads the AWS configuration once and returns a Store.
// Static credentials from cfg take precedence over the default credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient()),
		awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	awsCfg.Region = cfg.Region

	return &Store{
		aws:     awsCfg,
		cfg:     cfg,
		clients: expirable.NewLRU[clientKey, *Client](cfg.ClientCacheSize, nil, cfg.ClientCacheTTL),
		now:     time.Now,
	}, nil
}

// Config returns the process-wide default configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// ClientFor returns a client for the default configuration with o applied.
// Clients are pooled by endpoint, region and addressing style.
func (s *Store) ClientFor(o Overrides) (*Client, error) {
	derived := s.cfg.Derive(o)
	key := derived.key()

	if c, ok := s.clients.Get(key); ok {
		return c, nil
	}

	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		if c, ok := s.clients.Get(key); ok {
			return c, nil
		}
		c := newClient(s.aws, derived, s.now)
		s.clients.Add(key, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Client probes and presigns objects against one derived configuration.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	now       func() time.Time
	cfg       Config
}

func newClient(base aws.Config, cfg Config, now func() time.Time) *Client {
	client := s3.NewFromConfig(base, func(o *s3.Options) {
		o.Region = cfg.Region
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		now:       now,
		cfg:       cfg,
	}
}

// Config returns the derived configuration this client was built from.
func (c *Client) Config() Config {
	return c.cfg
}

// Exists issues a metadata-only request for the object.
// Returns ErrNotFound when the object (or bucket) is absent.
func (c *Client) Exists(ctx context.Context, bucket, key string) error {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrProbeFailed)
	}
	return nil
}

// Presign creates a GET URL valid for ttl from now that makes the object
// store answer with an attachment disposition carrying filename.
// No network round-trip is made.
func (c *Client) Presign(ctx context.Context, bucket, key string, ttl time.Duration, filename string) (*PresignedURL, error) {
	if ttl <= 0 || ttl > MaxPresignTTL {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	input := &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(ContentDisposition(filename)),
	}

	// SigV4 dates have second precision.
	issuedAt := c.now().UTC().Truncate(time.Second)
	result, err := c.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = ttl
	}, func(po *s3.PresignOptions) {
		po.Presigner = clockedPresigner{next: po.Presigner, at: issuedAt}
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrPresignFailed)
	}

	return &PresignedURL{
		URL:       result.URL,
		ExpiresAt: issuedAt.Add(ttl),
	}, nil
}

// clockedPresigner pins the signing time so the reported expiry matches
// the X-Amz-Date/X-Amz-Expires pair embedded in the URL.
type clockedPresigner struct {
	next s3.HTTPPresignerV4
	at   time.Time
}

func (p clockedPresigner) PresignHTTP(
	ctx context.Context, creds aws.Credentials, r *http.Request,
	payloadHash, service, region string, _ time.Time,
	optFns ...func(*v4.SignerOptions),
) (string, http.Header, error) {
	return p.next.PresignHTTP(ctx, creds, r, payloadHash, service, region, p.at, optFns...)
}
