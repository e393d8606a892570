package services

import "errors"

// Classified service errors. Handlers translate these into HTTP statuses;
// anything unrecognized is treated as internal and surfaces as a 500 with a
// generic message.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("rate limited")
	ErrBadRequest  = errors.New("bad request")
)
