package handlers

import (
	"time"

	"brightsteps/internal/models"
)

// Request payloads

type submitRequestPayload struct {
	ChildID               int64  `json:"child_id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	DateOfBirth           string `json:"date_of_birth"` // YYYY-MM-DD
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalNotes          string `json:"medical_notes"`
	Notes                 string `json:"notes"`
}

type reviewRequestPayload struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

type bulkUserActionPayload struct {
	Action  string  `json:"action"`
	UserIDs []int64 `json:"user_ids"`
	Message string  `json:"message"`
}

type enrollmentRequestPayload struct {
	ProgramID int64  `json:"program_id"`
	ChildID   int64  `json:"child_id"`
	Notes     string `json:"notes"`
}

type linkChildPayload struct {
	ParentID         int64  `json:"parent_id"`
	ChildID          int64  `json:"child_id"`
	RelationshipType string `json:"relationship_type"`
}

type enrollmentStatusPayload struct {
	Status string `json:"status"`
}

type childDetailsPayload struct {
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalNotes          string `json:"medical_notes"`
}

type programPayload struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	MaxParticipants *int   `json:"max_participants"`
}

// Response views

type requestView struct {
	ID            int64      `json:"id"`
	ReferenceCode string     `json:"reference_code"`
	ParentID      int64      `json:"parent_id"`
	ChildID       int64      `json:"child_id"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	RequestedAt   time.Time  `json:"requested_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy    *int64     `json:"reviewed_by,omitempty"`
	ReviewNotes   string     `json:"review_notes,omitempty"`
}

func toRequestView(r *models.AssociationRequest) requestView {
	return requestView{
		ID:            r.ID,
		ReferenceCode: r.ReferenceCode,
		ParentID:      r.ParentID,
		ChildID:       r.ChildID,
		Status:        r.Status,
		Notes:         r.Notes,
		RequestedAt:   r.RequestedAt,
		ReviewedAt:    r.ReviewedAt,
		ReviewedBy:    r.ReviewedBy,
		ReviewNotes:   r.ReviewNotes,
	}
}

func toRequestViews(requests []models.AssociationRequest) []requestView {
	views := make([]requestView, 0, len(requests))
	for i := range requests {
		views = append(views, toRequestView(&requests[i]))
	}
	return views
}

type childView struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

func toChildViews(children []models.Child) []childView {
	views := make([]childView, 0, len(children))
	for _, child := range children {
		view := childView{
			ID:        child.ID,
			FirstName: child.FirstName,
			LastName:  child.LastName,
		}
		if child.DateOfBirth != nil {
			view.DateOfBirth = child.DateOfBirth.Format("2006-01-02")
		}
		views = append(views, view)
	}
	return views
}

type childDetailView struct {
	ID                    int64  `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	DateOfBirth           string `json:"date_of_birth,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalNotes          string `json:"medical_notes"`
}

func toChildDetailView(child *models.Child) childDetailView {
	view := childDetailView{
		ID:                    child.ID,
		FirstName:             child.FirstName,
		LastName:              child.LastName,
		EmergencyContactName:  child.EmergencyContactName,
		EmergencyContactPhone: child.EmergencyContactPhone,
		MedicalNotes:          child.MedicalNotes,
	}
	if child.DateOfBirth != nil {
		view.DateOfBirth = child.DateOfBirth.Format("2006-01-02")
	}
	return view
}

type relationshipView struct {
	ID               int64  `json:"id"`
	ParentID         int64  `json:"parent_id"`
	ChildID          int64  `json:"child_id"`
	RelationshipType string `json:"relationship_type"`
	Status           string `json:"status"`
	AssignedBy       int64  `json:"assigned_by"`
}

func toRelationshipView(rel *models.ParentChildRelationship) relationshipView {
	return relationshipView{
		ID:               rel.ID,
		ParentID:         rel.ParentID,
		ChildID:          rel.ChildID,
		RelationshipType: rel.RelationshipType,
		Status:           rel.Status,
		AssignedBy:       rel.AssignedBy,
	}
}

type userView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserViews(users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, userView{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
	}
	return views
}

type programView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	MaxParticipants *int   `json:"max_participants"`
}

func toProgramView(p *models.Program) programView {
	return programView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Status:          p.Status,
		MaxParticipants: p.MaxParticipants,
	}
}

func toProgramViews(programs []models.Program) []programView {
	views := make([]programView, 0, len(programs))
	for i := range programs {
		views = append(views, toProgramView(&programs[i]))
	}
	return views
}

type enrollmentView struct {
	ID         int64     `json:"id"`
	ProgramID  int64     `json:"program_id"`
	ChildID    int64     `json:"child_id"`
	ChildName  string    `json:"child_name"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

func toEnrollmentView(e *models.Enrollment) enrollmentView {
	return enrollmentView{
		ID:         e.ID,
		ProgramID:  e.ProgramID,
		ChildID:    e.ChildID,
		ChildName:  e.ChildName,
		Status:     e.Status,
		Notes:      e.Notes,
		EnrolledAt: e.EnrolledAt,
	}
}

func toEnrollmentViews(enrollments []models.Enrollment) []enrollmentView {
	views := make([]enrollmentView, 0, len(enrollments))
	for i := range enrollments {
		views = append(views, toEnrollmentView(&enrollments[i]))
	}
	return views
}

type auditView struct {
	ID        int64     `json:"id"`
	BatchID   string    `json:"batch_id"`
	TableName string    `json:"table_name"`
	RecordID  int64     `json:"record_id"`
	Action    string    `json:"action"`
	OldValues string    `json:"old_values,omitempty"`
	NewValues string    `json:"new_values,omitempty"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditViews(entries []models.AuditEntry) []auditView {
	views := make([]auditView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, auditView{
			ID:        entry.ID,
			BatchID:   entry.BatchID,
			TableName: entry.TableName,
			RecordID:  entry.RecordID,
			Action:    entry.Action,
			OldValues: entry.OldValues,
			NewValues: entry.NewValues,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return views
}
