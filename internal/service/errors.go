package service

import "errors"

// Error taxonomy surfaced to the caller. Several of these are correct
// refusals rather than failures, so each maps to a specific message at the
// HTTP layer instead of a generic one.
var (
	ErrRequestNotFound   = errors.New("association request not found")
	ErrAlreadyReviewed   = errors.New("association request has already been reviewed")
	ErrAlreadyAssociated = errors.New("parent is already associated with this child")
	ErrRequestPending    = errors.New("a request for this child is already awaiting review")
	ErrInvalidDecision   = errors.New("review decision must be approve or reject")

	ErrChildNotFound = errors.New("child not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrAdminFloorViolation = errors.New("cannot remove all admin users from the system")
	ErrUnknownBulkAction   = errors.New("unknown bulk user action")
	ErrNoUsersSelected     = errors.New("no users selected")

	ErrProgramNotFound    = errors.New("program not found")
	ErrProgramNotOpen     = errors.New("program is not open for enrollment")
	ErrProgramFull        = errors.New("program has reached its participant limit")
	ErrNotLinked          = errors.New("no approved relationship links this parent to the child")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrEnrollmentFinished = errors.New("enrollment is already completed or cancelled")
)
