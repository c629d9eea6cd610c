package domain

import "errors"

// Error taxonomy shared by services, repositories and the HTTP layer.
// Repositories wrap these with %w; handlers map them to status codes with
// errors.Is. Storage detail never crosses the HTTP boundary.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)
