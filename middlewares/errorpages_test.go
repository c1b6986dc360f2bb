package middlewares_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dlproxy/internal"
	"github.com/dmitrymomot/dlproxy/middlewares"
	"github.com/dmitrymomot/dlproxy/views"
)

func testPages(t *testing.T) *views.Pages {
	t.Helper()
	pages, err := views.Load(fstest.MapFS{
		"unauthorized.html": {Data: []byte(`denied {{.StatusCode}} {{.Scheme}}://{{.Host}}{{.URI}}`)},
		"error.html":        {Data: []byte(`oops {{.StatusCode}} {{.Path}}`)},
	})
	require.NoError(t, err)
	return pages
}

func TestErrorPages(t *testing.T) {
	t.Parallel()

	pages := testPages(t)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unauthorized failure",
			err:        internal.Unauthorized(errors.New("unknown secret")),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "denied 401 http://files.example.com/abc/report.pdf?x=1",
		},
		{
			name:       "wrapped unauthorized failure",
			err:        fmt.Errorf("handler: %w", internal.Unauthorized(nil)),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "denied 401",
		},
		{
			name:       "internal failure",
			err:        internal.Internal(errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "oops 500 /abc/report.pdf",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "oops 500",
		},
		{
			name:       "panic",
			err:        &middlewares.PanicError{Value: "x"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "oops 500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := get("/abc/report.pdf?x=1")
			req.Host = "Files.Example.com:8080"
			rec, err := do(t, req, func(c internal.Context) error {
				return tt.err
			}, middlewares.ErrorPages(pages.Page))

			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)
			require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			require.NotContains(t, rec.Body.String(), "db down")
		})
	}

	t.Run("success passes through", func(t *testing.T) {
		t.Parallel()

		rec, err := do(t, get("/"), func(c internal.Context) error {
			return c.String(http.StatusOK, "fine")
		}, middlewares.ErrorPages(pages.Page))

		require.NoError(t, err)
		require.Equal(t, "fine", rec.Body.String())
	})

	t.Run("written response is kept", func(t *testing.T) {
		t.Parallel()

		rec, err := do(t, get("/"), func(c internal.Context) error {
			_ = c.String(http.StatusAccepted, "partial")
			return errors.New("late failure")
		}, middlewares.ErrorPages(pages.Page))

		require.NoError(t, err)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Equal(t, "partial", rec.Body.String())
	})

	t.Run("forwarded proto", func(t *testing.T) {
		t.Parallel()

		req := get("/s/f")
		req.Host = "files.example.com"
		req.Header.Set("X-Forwarded-Proto", "https")
		rec, _ := do(t, req, func(c internal.Context) error {
			return internal.Unauthorized(nil)
		}, middlewares.ErrorPages(pages.Page, middlewares.WithForwardedProto()))

		require.Contains(t, rec.Body.String(), "https://files.example.com/s/f")
	})

	t.Run("default scheme ignores forwarded proto unless trusted", func(t *testing.T) {
		t.Parallel()

		req := get("/s/f")
		req.Host = "files.example.com"
		req.Header.Set("X-Forwarded-Proto", "http")
		rec, _ := do(t, req, func(c internal.Context) error {
			return internal.Unauthorized(nil)
		}, middlewares.ErrorPages(pages.Page, middlewares.WithDefaultScheme("https")))

		require.Contains(t, rec.Body.String(), "https://files.example.com/s/f")
	})

	t.Run("sees recovered panics", func(t *testing.T) {
		t.Parallel()

		rec, err := do(t, get("/"), func(c internal.Context) error {
			panic("kaboom")
		}, middlewares.ErrorPages(pages.Page), middlewares.Recover())

		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "oops 500")
	})
}

func TestErrorPages_RenderFailure(t *testing.T) {
	t.Parallel()

	failing := func(name string, data views.PageData) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("template exploded")
		})
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"unauthorized keeps 401", internal.Unauthorized(nil), http.StatusUnauthorized, "The secret is invalid\n"},
		{"internal keeps 500", errors.New("boom"), http.StatusInternalServerError, "Something went wrong.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := do(t, get("/"), func(c internal.Context) error {
				return tt.err
			}, middlewares.ErrorPages(failing))

			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantBody, rec.Body.String())
			require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}
