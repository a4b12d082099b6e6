package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrDeviceMismatch     = errors.New("device not authorized")
	ErrCredentialsChanged = errors.New("credentials changed")
	ErrVendorGone         = errors.New("vendor no longer exists")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrCodeConflict       = errors.New("vendor code already in use")
)
