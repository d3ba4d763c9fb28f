package models

import (
	"strings"
	"time"
)

// Child is the identity record for a minor. Identity is effectively
// immutable once relationships or enrollments reference it; deletion is
// blocked by foreign keys.
type Child struct {
	ID                    int64
	FirstName             string
	LastName              string
	DateOfBirth           *time.Time
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalNotes          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FullName returns the child's display name
func (c *Child) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
