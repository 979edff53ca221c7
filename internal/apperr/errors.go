package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock is returned when a reservation exceeds the available quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidStateTransition is returned when a delivery status guard is violated.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrRemoteCall wraps downstream RPC failures (timeouts, 5xx, transport errors).
var ErrRemoteCall = errors.New("remote call failed")
