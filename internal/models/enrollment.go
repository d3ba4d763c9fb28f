package models

import "time"

// Enrollment statuses
const (
	EnrollmentStatusPending   = "pending"
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Enrollment is a child's registration in a program. ChildName is
// denormalized at admission time for display.
type Enrollment struct {
	ID         int64
	ProgramID  int64
	ChildID    int64
	ChildName  string
	Status     string
	Notes      string
	EnrolledAt time.Time
	UpdatedAt  time.Time
}

// CountsTowardOccupancy reports whether the enrollment consumes a capacity
// slot. Only cancelled enrollments release their slot.
func (e *Enrollment) CountsTowardOccupancy() bool {
	return e.Status != EnrollmentStatusCancelled
}

// IsFinished reports whether the enrollment reached a terminal status
func (e *Enrollment) IsFinished() bool {
	return e.Status == EnrollmentStatusCompleted || e.Status == EnrollmentStatusCancelled
}
