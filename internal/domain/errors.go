package domain

import "errors"

// Sentinel errors shared across entities. Services return these unchanged so
// the delivery layer can map them to stable HTTP error codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
