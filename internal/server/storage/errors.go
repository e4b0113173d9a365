package storage

import "errors"

// Common storage errors
var (
	// ErrAccountNotFound indicates that account was not found in storage
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists indicates that account with this identity already exists
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrRoleNotFound indicates that role was not found in storage
	ErrRoleNotFound = errors.New("role not found")
)
