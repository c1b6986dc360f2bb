package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const resolveQuery = `SELECT id, s3_bucket, bucket_key, download_filename,
	aws_endpoint_url, aws_region, aws_s3_force_path_style
FROM download_proxy_file_info($1, $2)`

const logAccessQuery = `INSERT INTO download_proxy_access_log (uuid_download_proxy_files, access_data)
VALUES ($1, $2)`

// Repository resolves secrets and records accesses in PostgreSQL.
// Validity windows and revocation are evaluated by download_proxy_file_info.
type Repository struct {
	db DBTX
}

// NewRepository creates a repository over db.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Resolve maps a secret presented on host to object coordinates.
// Returns ErrUnauthorized when no valid record matches.
// Errors never include the secret.
func (r *Repository) Resolve(ctx context.Context, host, secret string) (*Coordinates, error) {
	if secret == "" {
		return nil, ErrUnauthorized
	}

	var (
		c         Coordinates
		filename  *string
		endpoint  *string
		region    *string
		pathStyle *bool
	)
	err := r.db.QueryRow(ctx, resolveQuery, host, secret).Scan(
		&c.RecordID, &c.Bucket, &c.ObjectKey, &filename,
		&endpoint, &region, &pathStyle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", ErrResolveFailed, err)
	}

	if filename != nil {
		c.DownloadFilename = *filename
	}
	c.Overrides.Endpoint = nonEmpty(endpoint)
	c.Overrides.Region = nonEmpty(region)
	c.Overrides.PathStyle = pathStyle

	return &c, nil
}

// LogAccess appends one access-log entry for the record.
func (r *Repository) LogAccess(ctx context.Context, recordID uuid.UUID, data AccessData) error {
	if data == nil {
		data = AccessData{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAccessLogFailed, err)
	}

	if _, err := r.db.Exec(ctx, logAccessQuery, recordID, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrAccessLogFailed, err)
	}
	return nil
}

// nonEmpty treats NULL and empty text alike: both inherit the default.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
