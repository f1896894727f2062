package services

import "errors"

// Sentinel errors returned by the tenant and linking services. Handlers map
// these onto HTTP statuses; anything else is treated as an internal error.
var (
	// ErrNoActiveOperator means the pilot has no working context selected.
	ErrNoActiveOperator = errors.New("no active operator")

	// ErrNoProfile means the identity has no application-level pilot profile.
	ErrNoProfile = errors.New("pilot profile not found")

	// ErrNotAMember means the pilot holds no active membership with the
	// target operator.
	ErrNotAMember = errors.New("pilot is not an active member of this operator")

	// ErrAlreadyMember means a membership row (in any state) already exists.
	ErrAlreadyMember = errors.New("pilot already has a membership with this operator")

	// ErrOperatorNotFound means the target operator does not exist or is
	// inactive.
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrRequestNotPending means a join request was already reviewed.
	ErrRequestNotPending = errors.New("join request is not pending")

	// ErrInvalidCode covers missing, already used, and expired link codes.
	// The distinction is deliberately not exposed.
	ErrInvalidCode = errors.New("invalid or expired code")
)
