package identity

import "errors"

var (
	ErrMissingToken    = errors.New("missing access token")
	ErrMissingUserID   = errors.New("missing user id")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrTokenExpired    = errors.New("token expired or not valid yet")
	ErrInvalidSubject  = errors.New("invalid subject")
)
