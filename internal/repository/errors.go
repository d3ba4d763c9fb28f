package repository

import "errors"

// Storage-level refusals. Services translate these into their user-facing
// error taxonomy; repositories return them so transactional guards and
// constraint failures stay distinguishable from transport errors.
var (
	// ErrNotPending is returned when a review write finds the request
	// already in a terminal state.
	ErrNotPending = errors.New("association request is not pending")

	// ErrDuplicateRelationship is returned when a relationship insert hits
	// the (parent_id, child_id) uniqueness constraint or its in-transaction
	// pre-check.
	ErrDuplicateRelationship = errors.New("relationship already exists for this parent and child")

	// ErrCapacityExceeded is returned when an admission insert finds the
	// program full inside the insert transaction.
	ErrCapacityExceeded = errors.New("program has no remaining capacity")

	// ErrNoAdminsRemaining is returned when a bulk role change or deletion
	// would leave the system without any admin users.
	ErrNoAdminsRemaining = errors.New("operation would leave no admin users")
)
