package auth

import "errors"

var (
	// Hashing
	ErrHashingFailure = errors.New("credential hashing failed")

	// Token issuance
	ErrEncodingFailure = errors.New("token encoding failed")

	// Token validation. Callers must treat all three the same way: unauthenticated.
	ErrMalformedToken    = errors.New("malformed token")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrExpired           = errors.New("token expired")
)
