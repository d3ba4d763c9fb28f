package models

import "time"

// Program statuses
const (
	ProgramStatusDraft     = "draft"
	ProgramStatusPublished = "published"
	ProgramStatusArchived  = "archived"
)

// Program is an offering children enroll into. A nil MaxParticipants means
// no capacity ceiling.
type Program struct {
	ID              int64
	Name            string
	Description     string
	Status          string
	MaxParticipants *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Occupancy describes how full a program is. Current counts non-cancelled
// enrollments; a program without a ceiling is never full.
type Occupancy struct {
	Current int  `json:"current"`
	Max     *int `json:"max"`
	IsFull  bool `json:"is_full"`
}
