package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidSite    = errors.New("invalid site")
	ErrLimitsExceeded = errors.New("storage limits exceeded")
)
