// Package download implements the secret-to-presigned-URL pipeline.
//
// A request carries an opaque secret and the host it was presented on.
// Repository resolves the pair against PostgreSQL (download_proxy_file_info),
// Service derives an object client from the per-file overrides, confirms the
// object exists, presigns a short-lived GET URL and records the access before
// returning the URL to redirect to.
//
// Every way a secret fails to reach a file (unknown, expired, revoked, object
// missing) is reported as ErrUnauthorized so callers cannot tell them apart.
// Failures are returned as *StageError carrying the last stage reached.
//
//	svc, err := download.NewService(repo, repo, download.StoreClients(store), download.Config{
//	    PresignTTL: time.Minute,
//	})
//	res, err := svc.Redirect(ctx, download.Request{Host: host, Secret: secret})
package download
