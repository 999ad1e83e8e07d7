package repositories

import "errors"

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrStaleWrite means a conditional write lost against a concurrent update
	ErrStaleWrite = errors.New("document changed concurrently")
)
