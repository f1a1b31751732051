package learning

import "errors"

var (
	// ErrNotFound: course, enrollment or video absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: course not published.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: duplicate enrollment.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState: course has no videos to measure progress against.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput: request failed validation before reaching the engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInconsistencyDetected: ledger counters disagree with the enrollment records. Internal only.
	ErrInconsistencyDetected = errors.New("ledger inconsistency detected")
)
