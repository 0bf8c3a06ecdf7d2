package wizard

import "errors"

// Validation errors are surfaced as field-local state by the host and never
// mutate wizard or store state.
var (
	ErrBlankTitle       = errors.New("task title is required")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrInvalidOutcome   = errors.New("outcome must be completed, tried, or skipped")
)
