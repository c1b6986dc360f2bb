package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/dlproxy/internal"
	"github.com/dmitrymomot/dlproxy/views"
)

// PageFunc returns the component for a named error page.
type PageFunc func(name string, data views.PageData) templ.Component

// ErrorPagesConfig configures the error page middleware.
type ErrorPagesConfig struct {
	// DefaultScheme is reported when the request carries no scheme information.
	DefaultScheme string
	// TrustForwardedProto reads the scheme from X-Forwarded-Proto.
	TrustForwardedProto bool
}

// ErrorPagesOption configures ErrorPagesConfig.
type ErrorPagesOption func(*ErrorPagesConfig)

// WithDefaultScheme sets the scheme reported for plain requests. Defaults to "http".
func WithDefaultScheme(scheme string) ErrorPagesOption {
	return func(cfg *ErrorPagesConfig) {
		if scheme != "" {
			cfg.DefaultScheme = scheme
		}
	}
}

// WithForwardedProto trusts X-Forwarded-Proto for the reported scheme.
func WithForwardedProto() ErrorPagesOption {
	return func(cfg *ErrorPagesConfig) {
		cfg.TrustForwardedProto = true
	}
}

// ErrorPages returns middleware that turns handler errors into HTML error pages.
// Unauthorized failures render the "unauthorized" page with 401; every other
// error renders "error" with 500. The page is rendered before anything is
// written; when rendering fails a plain-text body with the same status is sent.
// Responses already written by the handler are left untouched.
func ErrorPages(render PageFunc, opts ...ErrorPagesOption) internal.Middleware {
	cfg := &ErrorPagesConfig{DefaultScheme: "http"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			f := internal.Classify(err)
			if f.Kind == internal.KindUnauthorized {
				c.LogWarn("unauthorized", slog.String("kind", f.Kind.String()), slog.Any("error", err))
			} else {
				c.LogError("request failed", slog.String("kind", f.Kind.String()), slog.Any("error", err))
			}

			if c.Written() {
				return nil
			}

			status := f.StatusCode()
			name := views.PageError
			if f.Kind == internal.KindUnauthorized {
				name = views.PageUnauthorized
			}

			c.SetHeader("Cache-Control", "no-store")
			if rerr := c.Render(status, render(name, pageData(c, cfg, status))); rerr != nil {
				c.LogError("error page render failed",
					slog.String("page", name),
					slog.Any("error", internal.TemplateRender(rerr).WithOp("render "+name)),
				)
				if !c.Written() {
					http.Error(c.Response(), f.Message(), status)
				}
			}
			return nil
		}
	}
}

func pageData(c internal.Context, cfg *ErrorPagesConfig, status int) views.PageData {
	r := c.Request()

	scheme := cfg.DefaultScheme
	if r.TLS != nil {
		scheme = "https"
	}
	if cfg.TrustForwardedProto {
		if p := c.Header("X-Forwarded-Proto"); p == "http" || p == "https" {
			scheme = p
		}
	}

	return views.PageData{
		StatusCode: status,
		Scheme:     scheme,
		Host:       c.Domain(),
		Path:       r.URL.Path,
		URI:        r.URL.RequestURI(),
	}
}
