// Package middlewares provides the HTTP middleware of the download proxy.
//
// # Error pages
//
// ErrorPages turns handler errors into HTML pages. Failures classified as
// unauthorized render the "unauthorized" page with 401; everything else,
// including recovered panics and timeouts, renders "error" with 500.
//
//	pages, _ := views.New("")
//	app := dlproxy.New(
//	    dlproxy.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.ErrorPages(pages.Page),
//	        middlewares.Recover(),
//	        middlewares.Timeout(30*time.Second),
//	    ),
//	)
//
// Global middleware runs in the order listed, so ErrorPages must come before
// Recover and Timeout to see the errors they produce.
//
// # Request ID
//
// RequestID reuses an upstream X-Request-ID or generates a UUID, stores it in
// the context and echoes it in the response. Pair it with RequestIDExtractor
// to add request_id to every log line.
//
// # Recover and Timeout
//
// Recover converts panics into *PanicError. Timeout attaches a deadline to
// the request context and wraps errors returned after it passed in
// *TimeoutError.
//
// # Metrics and rate limiting
//
// Metrics and RateLimit are plain net/http middleware:
//
//	dlproxy.WithHTTPMiddleware(
//	    middlewares.Metrics(),
//	    middlewares.RateLimit(2, 8),
//	)
//
// Metrics labels requests by chi route pattern. RateLimit keeps one token
// bucket per client IP in a bounded, expiring cache.
package middlewares
