package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/dlproxy"
	"github.com/dmitrymomot/dlproxy/middlewares"
	"github.com/dmitrymomot/dlproxy/pkg/download"
)

// RobotsTxt disallows crawling every path.
const RobotsTxt = "User-agent: *\nDisallow: /\n"

var (
	clientIP  = dlproxy.NewExtractor(dlproxy.FromRemoteAddr())
	userAgent = dlproxy.NewExtractor(dlproxy.FromHeader("User-Agent"))
)

// Redirector runs the download pipeline. *download.Service implements it.
type Redirector interface {
	Redirect(ctx context.Context, req download.Request) (*download.Result, error)
}

// RedirectHandler serves secret links, the homepage redirect and robots.txt.
type RedirectHandler struct {
	svc      Redirector
	homepage string
}

// NewRedirectHandler creates the handler. homepage is the target of GET /.
func NewRedirectHandler(svc Redirector, homepage string) *RedirectHandler {
	return &RedirectHandler{svc: svc, homepage: homepage}
}

// Routes declares the handler routes.
// Implements the dlproxy.Handler interface.
func (h *RedirectHandler) Routes(r dlproxy.Router) {
	r.GET("/", h.home)
	r.GET("/robots.txt", h.robots)
	r.GET("/{secret}/{preferredName}", h.redirect)
}

func (h *RedirectHandler) home(c dlproxy.Context) error {
	return c.Redirect(http.StatusPermanentRedirect, h.homepage)
}

func (h *RedirectHandler) robots(c dlproxy.Context) error {
	return c.String(http.StatusOK, RobotsTxt)
}

// redirect answers a secret link with a 307 to a freshly presigned URL.
func (h *RedirectHandler) redirect(c dlproxy.Context) error {
	r := c.Request()
	preferred := pathParam(r, c.Param("preferredName"))
	host := c.Domain()

	data := download.AccessData{
		"host":           host,
		"preferred_name": preferred,
	}
	if ip, ok := clientIP.Extract(c); ok {
		data["client_ip"] = ip
	}
	if ua, ok := userAgent.Extract(c); ok {
		data["user_agent"] = ua
	}
	if id := middlewares.GetRequestID(c); id != "" {
		data["request_id"] = id
	}

	res, err := h.svc.Redirect(c.Context(), download.Request{
		Host:          host,
		Secret:        pathParam(r, c.Param("secret")),
		PreferredName: preferred,
		AccessData:    data,
	})
	if err != nil {
		if errors.Is(err, download.ErrUnauthorized) {
			return dlproxy.Unauthorized(err).WithOp("redirect")
		}
		return dlproxy.Internal(err).WithOp("redirect")
	}

	c.LogInfo("download redirected",
		"record_id", res.RecordID.String(),
		"filename", res.Filename,
		"expires_at", res.ExpiresAt,
	)
	c.SetHeader("Cache-Control", "no-store")
	return c.Redirect(http.StatusTemporaryRedirect, res.URL)
}

// pathParam decodes a route parameter. chi returns escaped values when the
// request path carried encoded bytes such as %2F.
func pathParam(r *http.Request, v string) string {
	if r.URL.RawPath == "" {
		return v
	}
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}
