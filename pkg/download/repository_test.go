package download_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dlproxy/pkg/download"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("scan: column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *string:
			*p = r.values[i].(string)
		case **string:
			*p, _ = r.values[i].(*string)
		case **bool:
			*p, _ = r.values[i].(*bool)
		default:
			return errors.New("scan: unsupported destination")
		}
	}
	return nil
}

type fakeDB struct {
	row      fakeRow
	execErr  error
	lastSQL  string
	lastArgs []any
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.lastSQL, db.lastArgs = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), db.execErr
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.lastSQL, db.lastArgs = sql, args
	return db.row
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestRepository_Resolve(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("full record", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{row: fakeRow{values: []any{
			id, "bucket", "a/b/report.pdf", strPtr("Report.pdf"),
			strPtr("http://minio:9000"), strPtr("eu-west-1"), boolPtr(true),
		}}}

		c, err := download.NewRepository(db).Resolve(context.Background(), "files.example.com", "s3cr3t")
		require.NoError(t, err)
		require.Equal(t, id, c.RecordID)
		require.Equal(t, "bucket", c.Bucket)
		require.Equal(t, "a/b/report.pdf", c.ObjectKey)
		require.Equal(t, "Report.pdf", c.DownloadFilename)
		require.Equal(t, "http://minio:9000", *c.Overrides.Endpoint)
		require.Equal(t, "eu-west-1", *c.Overrides.Region)
		require.True(t, *c.Overrides.PathStyle)
		require.Equal(t, []any{"files.example.com", "s3cr3t"}, db.lastArgs)
	})

	t.Run("null and empty overrides inherit", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{row: fakeRow{values: []any{
			id, "bucket", "key", (*string)(nil),
			strPtr(""), (*string)(nil), (*bool)(nil),
		}}}

		c, err := download.NewRepository(db).Resolve(context.Background(), "h", "s")
		require.NoError(t, err)
		require.Empty(t, c.DownloadFilename)
		require.True(t, c.Overrides.IsZero())
	})

	t.Run("no rows is unauthorized", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}

		_, err := download.NewRepository(db).Resolve(context.Background(), "h", "s")
		require.ErrorIs(t, err, download.ErrUnauthorized)
	})

	t.Run("empty secret skips the query", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}

		_, err := download.NewRepository(db).Resolve(context.Background(), "h", "")
		require.ErrorIs(t, err, download.ErrUnauthorized)
		require.Empty(t, db.lastSQL)
	})

	t.Run("query failure", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{row: fakeRow{err: errors.New("connection reset")}}

		_, err := download.NewRepository(db).Resolve(context.Background(), "h", "topsecret")
		require.ErrorIs(t, err, download.ErrResolveFailed)
		require.NotErrorIs(t, err, download.ErrUnauthorized)
		require.NotContains(t, err.Error(), "topsecret")
	})
}

func TestRepository_LogAccess(t *testing.T) {
	t.Parallel()

	t.Run("writes json payload", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		id := uuid.New()

		err := download.NewRepository(db).LogAccess(context.Background(), id, download.AccessData{"client_ip": "10.0.0.1"})
		require.NoError(t, err)
		require.Contains(t, db.lastSQL, "download_proxy_access_log")
		require.Len(t, db.lastArgs, 2)
		require.Equal(t, id, db.lastArgs[0])

		var got map[string]string
		require.NoError(t, json.Unmarshal(db.lastArgs[1].([]byte), &got))
		require.Equal(t, map[string]string{"client_ip": "10.0.0.1"}, got)
	})

	t.Run("nil data is an empty object", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}

		require.NoError(t, download.NewRepository(db).LogAccess(context.Background(), uuid.New(), nil))
		require.JSONEq(t, `{}`, string(db.lastArgs[1].([]byte)))
	})

	t.Run("exec failure", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{execErr: errors.New("disk full")}

		err := download.NewRepository(db).LogAccess(context.Background(), uuid.New(), nil)
		require.ErrorIs(t, err, download.ErrAccessLogFailed)
	})
}
