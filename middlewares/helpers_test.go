package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/dlproxy/internal"
)

type routeFunc func(r internal.Router)

func (f routeFunc) Routes(r internal.Router) { f(r) }

// do serves req through an app whose only route runs h behind mw.
// It returns the recorded response and the error that left the middleware chain.
func do(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) (*httptest.ResponseRecorder, error) {
	t.Helper()

	var got error
	capture := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			got = next(c)
			return got
		}
	}

	app := internal.New(
		internal.WithMiddleware(append([]internal.Middleware{capture}, mw...)...),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.GET("/*", h)
		})),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec, got
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
