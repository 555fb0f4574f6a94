package services

import "errors"

// ErrInvalidInput marks errors caused by the caller's data rather than a
// backend failure.
var ErrInvalidInput = errors.New("invalid input")
