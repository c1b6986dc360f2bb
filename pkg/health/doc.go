// Package health provides HTTP handlers for health probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] executes a set of [Checks] in parallel and answers
// 503 when any of them fails. Both negotiate JSON through the Accept header
// or ?format=json and fall back to plain text.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	}))
//
// [Run] executes the same checks once, for startup self-checks.
package health
