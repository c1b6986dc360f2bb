package internal

// Handler declares routes on a router.
//
// Example:
//
//	type RedirectHandler struct {
//	    svc *download.Service
//	}
//
//	func (h *RedirectHandler) Routes(r dlproxy.Router) {
//	    r.GET("/{secret}/{preferredName}", h.redirect)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handling middleware.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func Deny(next dlproxy.HandlerFunc) dlproxy.HandlerFunc {
//	    return func(c dlproxy.Context) error {
//	        if c.Header("X-Blocked") != "" {
//	            return internal.Unauthorized(errBlocked)
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors that no middleware turned into a response.
type ErrorHandler func(Context, error) error
