package auth

import "errors"

// Token and credential errors.
var (
	ErrInvalidToken        = errors.New("invalid authentication token")
	ErrExpiredToken        = errors.New("authentication token has expired")
	ErrTokenNotYetValid    = errors.New("authentication token not yet valid")
	ErrMissingToken        = errors.New("authentication token is missing")
	ErrWrongTokenType      = errors.New("wrong token type")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
