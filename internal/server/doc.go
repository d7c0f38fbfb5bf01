// Package server exposes the comparison engine over HTTP.
//
// The API is three routes: POST /v1/compare runs an analysis, GET
// /health reports liveness and model reachability, and GET /v1/stats
// reports cache and rate limiter counters. Responses are JSON; errors
// use a {"error": {"code", "message"}} envelope so clients can branch
// on the code without parsing prose.
//
// Every response to a rate-limited caller carries X-RateLimit-Limit,
// X-RateLimit-Remaining, and X-RateLimit-Reset; denials add Retry-After
// and repeat the delay as retry_after seconds in the body. Upstream
// model failures are translated into this service's own status space
// (502, 503, 504) rather than passed through verbatim.
package server
