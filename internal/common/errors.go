// Package common defines shared constants, sentinel errors, and small
// utilities used across launchdeck packages. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound = errors.New("not found")

	// Credential lifecycle errors.
	ErrAuthorizationRequired = errors.New("authorization required")
	ErrUnauthorized          = errors.New("unauthorized")

	// Validation errors raised before any network call.
	ErrValidation = errors.New("validation error")

	// Generic internal failure.
	ErrInternal = errors.New("internal error")
)
