package auth

import "errors"

var (
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrMissingToken  = errors.New("auth: missing bearer token")
	ErrInvalidScheme = errors.New("auth: invalid authorization scheme")
	ErrRevokedToken  = errors.New("auth: token revoked")
	ErrMissingSecret = errors.New("auth: signing secret is not configured")
)
