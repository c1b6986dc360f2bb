// Package storage provides S3-compatible object probing and URL presigning.
//
// A Store loads the AWS configuration once at startup. Per-request settings
// (endpoint, region, addressing style) are applied on top of the defaults with
// Overrides, and the resulting clients are pooled so repeated requests for the
// same tenant reuse one client and its keep-alive connections.
//
// # Basic Usage
//
//	store, err := storage.New(ctx, storage.Config{
//		Region:    "eu-central-1",
//		PathStyle: true,
//		Endpoint:  "http://localhost:9000",
//	})
//	if err != nil {
//		return err
//	}
//
//	client, err := store.ClientFor(storage.Overrides{})
//	if err != nil {
//		return err
//	}
//
//	if err := client.Exists(ctx, "reports", "2024/q1.pdf"); err != nil {
//		if errors.Is(err, storage.ErrNotFound) {
//			// object or bucket is missing
//		}
//		return err
//	}
//
//	u, err := client.Presign(ctx, "reports", "2024/q1.pdf", time.Minute, "Q1 Report.pdf")
//
// # Content-Disposition
//
// Presigned URLs carry a response-content-disposition override built by
// ContentDisposition. Non-ASCII filenames get an ASCII fallback plus an
// RFC 5987 filename* parameter.
//
// # Errors
//
// Operations return errors wrapping the package sentinels (ErrNotFound,
// ErrAccessDenied, ErrProbeFailed, ErrPresignFailed, ErrInvalidTTL). The
// underlying AWS error is kept in the message only.
package storage
