package auth

import "errors"

// Token codec failures. Callers outside this package only ever see them mapped to ErrUnauthorized.
var (
	ErrTokenMalformed      = errors.New("token malformed")
	ErrTokenBadSignature   = errors.New("token signature invalid")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenIssuerMismatch = errors.New("token issuer mismatch")
)

// Access control failures returned by the Gate.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrUnavailable       = errors.New("account store unavailable")
)
