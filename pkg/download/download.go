package download

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dlproxy/pkg/storage"
)

// Sentinel errors for the download pipeline.
var (
	// ErrUnauthorized covers every reason a secret does not lead to a file:
	// unknown, expired or revoked secrets and objects missing from storage.
	ErrUnauthorized = errors.New("download: unauthorized")

	ErrResolveFailed   = errors.New("download: secret resolution failed")
	ErrAccessLogFailed = errors.New("download: access log write failed")
	ErrClientFailed    = errors.New("download: object store client unavailable")
	ErrInvalidConfig   = errors.New("download: invalid configuration")
)

// Coordinates locate the object a valid secret grants access to.
type Coordinates struct {
	// Bucket and ObjectKey address the object.
	Bucket    string
	ObjectKey string
	// DownloadFilename is the stored filename, empty when none is recorded.
	DownloadFilename string
	// Overrides are the per-file connection settings; nil fields inherit the defaults.
	Overrides storage.Overrides
	RecordID  uuid.UUID
}

// AccessData is the key/value payload of an access-log entry.
type AccessData map[string]string

// Request is one redirect attempt.
type Request struct {
	AccessData    AccessData
	Host          string
	Secret        string
	PreferredName string
}

// Result is the outcome of a successful redirect.
type Result struct {
	ExpiresAt time.Time
	URL       string
	Filename  string
	RecordID  uuid.UUID
}

// Filename picks the download name: the stored filename, then the name
// requested in the URL, then the last segment of the object key.
func (c *Coordinates) Filename(preferred string) string {
	if c.DownloadFilename != "" {
		return c.DownloadFilename
	}
	if preferred != "" {
		return preferred
	}
	return storage.FilenameFromKey(c.ObjectKey)
}
