package models

import "time"

// Association request statuses
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Review decisions
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// AssociationRequest is a parent's pending ask for a relationship with a
// child record. It transitions from pending to exactly one terminal state
// (approved or rejected) via a single reviewer action; approval creates the
// relationship as a side effect.
type AssociationRequest struct {
	ID            int64
	ReferenceCode string
	ParentID      int64
	ChildID       int64
	Status        string
	Notes         string
	RequestedAt   time.Time
	ReviewedAt    *time.Time
	ReviewedBy    *int64
	ReviewNotes   string
}

// IsPending reports whether the request is still awaiting review
func (r *AssociationRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsTerminal reports whether the request has been reviewed
func (r *AssociationRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}
