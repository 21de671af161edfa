package auth

import "errors"

// Sentinel errors for user store operations.
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)
