package evaluation

import "errors"

var (
	ErrNotFound          = errors.New("evaluation not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPeriodClosed      = errors.New("period closed")
	ErrValidationFailed  = errors.New("validation failed")
	ErrStaleState        = errors.New("stale state")
	ErrAlreadyExists     = errors.New("evaluation already exists for period")
)
