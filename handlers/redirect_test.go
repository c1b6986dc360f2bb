package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dlproxy"
	"github.com/dmitrymomot/dlproxy/handlers"
	"github.com/dmitrymomot/dlproxy/middlewares"
	"github.com/dmitrymomot/dlproxy/pkg/download"
	"github.com/dmitrymomot/dlproxy/pkg/storage"
	"github.com/dmitrymomot/dlproxy/views"
)

type fakeRedirector struct {
	mu   sync.Mutex
	reqs []download.Request
	res  *download.Result
	err  error
}

func (f *fakeRedirector) Redirect(_ context.Context, req download.Request) (*download.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

func newApp(t *testing.T, svc handlers.Redirector) *dlproxy.App {
	t.Helper()

	pages, err := views.New("")
	require.NoError(t, err)

	return dlproxy.New(
		dlproxy.WithMiddleware(
			middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-1" })),
			middlewares.ErrorPages(pages.Page),
			middlewares.Recover(),
		),
		dlproxy.WithHandlers(handlers.NewRedirectHandler(svc, "https://example.com/")),
		dlproxy.WithStaticFallback(fstest.MapFS{
			"favicon.ico": {Data: []byte("icon")},
		}),
	)
}

func serve(app http.Handler, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = "files.example.com"
	req.RemoteAddr = "203.0.113.7:52000"
	req.Header.Set("User-Agent", "curl/8.0")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestRedirectHandler_Redirect(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := &fakeRedirector{res: &download.Result{
			URL:       "https://s3.test/files/q1.pdf?X-Amz-Signature=abc",
			Filename:  "q1.pdf",
			RecordID:  uuid.New(),
			ExpiresAt: time.Now().Add(time.Minute),
		}}
		rec := serve(newApp(t, svc), "/s3cr3t/q1.pdf")

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "https://s3.test/files/q1.pdf?X-Amz-Signature=abc", rec.Header().Get("Location"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		require.Len(t, svc.reqs, 1)
		got := svc.reqs[0]
		require.Equal(t, "s3cr3t", got.Secret)
		require.Equal(t, "q1.pdf", got.PreferredName)
		require.Equal(t, "files.example.com", got.Host)
		require.Equal(t, download.AccessData{
			"client_ip":      "203.0.113.7",
			"host":           "files.example.com",
			"preferred_name": "q1.pdf",
			"user_agent":     "curl/8.0",
			"request_id":     "req-1",
		}, got.AccessData)
	})

	t.Run("encoded segments are decoded", func(t *testing.T) {
		t.Parallel()

		svc := &fakeRedirector{res: &download.Result{URL: "https://s3.test/x"}}
		rec := serve(newApp(t, svc), "/abc/a%2Fb%20c.pdf")

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "a/b c.pdf", svc.reqs[0].PreferredName)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unauthorized",
			err:        &download.StageError{Stage: download.StageStart, Err: download.ErrUnauthorized},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "not valid",
		},
		{
			name:       "missing object",
			err:        &download.StageError{Stage: download.StageObjectConfigured, Err: fmt.Errorf("%w: %w", download.ErrUnauthorized, storage.ErrNotFound)},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "not valid",
		},
		{
			name:       "access log failure",
			err:        &download.StageError{Stage: download.StagePresigned, Err: download.ErrAccessLogFailed},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Something went wrong.",
		},
		{
			name:       "store failure",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Something went wrong.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(newApp(t, &fakeRedirector{err: tt.err}), "/s3cr3t/q1.pdf")

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)
			require.Empty(t, rec.Header().Get("Location"))
			require.NotContains(t, rec.Body.String(), "s3cr3t")
			require.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestRedirectHandler_Routes(t *testing.T) {
	t.Parallel()

	svc := &fakeRedirector{}
	app := newApp(t, svc)

	t.Run("homepage", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, "/")
		require.Equal(t, http.StatusPermanentRedirect, rec.Code)
		require.Equal(t, "https://example.com/", rec.Header().Get("Location"))
	})

	t.Run("robots", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, "/robots.txt")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "User-agent: *\nDisallow: /\n", rec.Body.String())
	})

	t.Run("static fallback", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, "/favicon.ico")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "icon", rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, "/missing.css")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("too many segments", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, "/a/b/c")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// resolverFunc adapts a function to download.Resolver.
type resolverFunc func(ctx context.Context, host, secret string) (*download.Coordinates, error)

func (f resolverFunc) Resolve(ctx context.Context, host, secret string) (*download.Coordinates, error) {
	return f(ctx, host, secret)
}

type memoryLog struct {
	mu      sync.Mutex
	entries []download.AccessData
	fail    bool
}

func (l *memoryLog) LogAccess(_ context.Context, _ uuid.UUID, data download.AccessData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return download.ErrAccessLogFailed
	}
	l.entries = append(l.entries, data)
	return nil
}

func TestRedirectHandler_EndToEnd(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/files/reports/q1.pdf":
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/files/reports/slow.pdf":
			select {
			case <-r.Context().Done():
			case <-release:
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s3.Close)
	t.Cleanup(func() { close(release) })

	store, err := storage.New(context.Background(), storage.Config{
		Endpoint:    s3.URL,
		Region:      "us-east-1",
		AccessKey:   "test",
		SecretKey:   "test",
		PathStyle:   true,
		MaxAttempts: 1,
	})
	require.NoError(t, err)

	records := map[string]*download.Coordinates{
		"good":    {RecordID: uuid.New(), Bucket: "files", ObjectKey: "reports/q1.pdf", DownloadFilename: "Q1 Report.pdf"},
		"missing": {RecordID: uuid.New(), Bucket: "files", ObjectKey: "reports/gone.pdf"},
		"slow":    {RecordID: uuid.New(), Bucket: "files", ObjectKey: "reports/slow.pdf"},
	}
	resolver := resolverFunc(func(_ context.Context, _, secret string) (*download.Coordinates, error) {
		c, ok := records[secret]
		if !ok {
			return nil, download.ErrUnauthorized
		}
		cp := *c
		return &cp, nil
	})

	newSvc := func(log download.AccessLogger, probeTimeout ...time.Duration) *download.Service {
		cfg := download.Config{PresignTTL: time.Minute}
		if len(probeTimeout) > 0 {
			cfg.ProbeTimeout = probeTimeout[0]
		}
		svc, err := download.NewService(resolver, log, download.StoreClients(store), cfg)
		require.NoError(t, err)
		return svc
	}

	t.Run("valid secret", func(t *testing.T) {
		t.Parallel()
		log := &memoryLog{}
		rec := serve(newApp(t, newSvc(log)), "/good/ignored.pdf")

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		loc := rec.Header().Get("Location")
		require.Contains(t, loc, s3.URL+"/files/reports/q1.pdf?")
		require.Contains(t, loc, "X-Amz-Expires=60")
		require.Contains(t, loc, "response-content-disposition=")
		require.Len(t, log.entries, 1)
	})

	t.Run("unknown secret", func(t *testing.T) {
		t.Parallel()
		log := &memoryLog{}
		rec := serve(newApp(t, newSvc(log)), "/bad/x.pdf")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, log.entries)
	})

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()
		log := &memoryLog{}
		rec := serve(newApp(t, newSvc(log)), "/missing/x.pdf")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, log.entries)
	})

	t.Run("existence check times out", func(t *testing.T) {
		t.Parallel()
		log := &memoryLog{}
		rec := serve(newApp(t, newSvc(log, 50*time.Millisecond)), "/slow/x.pdf")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "Something went wrong.")
		require.Empty(t, rec.Header().Get("Location"))
		require.Empty(t, log.entries)
	})

	t.Run("log failure", func(t *testing.T) {
		t.Parallel()
		rec := serve(newApp(t, newSvc(&memoryLog{fail: true})), "/good/x.pdf")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Empty(t, rec.Header().Get("Location"))
	})
}
