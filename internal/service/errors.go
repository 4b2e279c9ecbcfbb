package service

import "errors"

// Sentinel errors mapped to HTTP status codes at the handler boundary.
var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)
