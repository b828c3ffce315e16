package auth

import "errors"

// Validation failures surfaced by JWTService. The middleware maps all of
// them to 401 responses without leaking which check failed.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures, and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken means the exp claim is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid means the nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken means no token was supplied at all.
	ErrMissingToken = errors.New("authentication token is missing")
)
