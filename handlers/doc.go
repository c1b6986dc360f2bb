// Package handlers contains the HTTP routes of the download proxy.
//
//	GET /{secret}/{preferredName}  307 to a presigned URL, 401 or 500
//	GET /                          308 to the configured homepage
//	GET /robots.txt                disallow all
//
// Failures are returned as dlproxy.Failure values and rendered by
// middlewares.ErrorPages.
package handlers
