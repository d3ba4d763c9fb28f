package models

import "time"

// RelationshipStatusApproved is the only status a relationship row carries;
// pending and rejected states live on the upstream association request.
const RelationshipStatusApproved = "approved"

// ParentChildRelationship links a parent account to a child record. At most
// one relationship exists per (parent, child) pair, enforced by a unique
// constraint in the store.
type ParentChildRelationship struct {
	ID                      int64
	ParentID                int64
	ChildID                 int64
	RelationshipType        string
	Status                  string
	CanViewWork             bool
	CanReceiveNotifications bool
	AssignedBy              int64
	AssignedAt              time.Time
}
