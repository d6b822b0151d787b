package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrUnavailable marks an external backend with no configured credentials
	// or no fallback tier (push). Handlers map it to 503.
	ErrUnavailable = errors.New("service unavailable")

	// ErrIndexMissing marks a store query rejected because the composite
	// index it needs does not exist. The feed manager reacts by switching to
	// its unindexed query mode.
	ErrIndexMissing = errors.New("index missing")
)
