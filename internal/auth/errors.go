package auth

import "errors"

var (
	// ErrNoToken is returned when the request carries no bearer token.
	ErrNoToken = errors.New("no authentication token provided")

	// ErrTokenInvalid is returned for malformed tokens or tokens with a bad signature.
	ErrTokenInvalid = errors.New("invalid authentication token")

	// ErrTokenExpired is returned when the token lifetime has passed.
	ErrTokenExpired = errors.New("authentication token expired")

	// ErrWrongTokenType is returned when a refresh token is used as access token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrUserNotFound is returned when the token subject does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive is returned when the user account is inactive.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials is returned when username or password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")
)
