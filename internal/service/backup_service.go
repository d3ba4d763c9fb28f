package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
	"brightsteps/internal/repository"
)

// BackupData is the portable JSON structure for a full portal export
type BackupData struct {
	Version       string                           `json:"version"`
	ExportedAt    time.Time                        `json:"exported_at"`
	Users         []models.User                    `json:"users"`
	Children      []models.Child                   `json:"children"`
	Relationships []models.ParentChildRelationship `json:"relationships"`
	Requests      []models.AssociationRequest      `json:"requests"`
	Programs      []models.Program                 `json:"programs"`
	Enrollments   []models.Enrollment              `json:"enrollments"`
}

// BackupService exports and imports the portal tables as JSON. It reads
// through the repositories and writes through raw inserts so an import
// preserves original IDs.
type BackupService struct {
	db               *database.DB
	userRepo         *repository.UserRepository
	childRepo        *repository.ChildRepository
	relationshipRepo *repository.RelationshipRepository
	requestRepo      *repository.RequestRepository
	programRepo      *repository.ProgramRepository
	enrollmentRepo   *repository.EnrollmentRepository
}

// NewBackupService creates a new backup service
func NewBackupService(
	db *database.DB,
	userRepo *repository.UserRepository,
	childRepo *repository.ChildRepository,
	relationshipRepo *repository.RelationshipRepository,
	requestRepo *repository.RequestRepository,
	programRepo *repository.ProgramRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *BackupService {
	return &BackupService{
		db:               db,
		userRepo:         userRepo,
		childRepo:        childRepo,
		relationshipRepo: relationshipRepo,
		requestRepo:      requestRepo,
		programRepo:      programRepo,
		enrollmentRepo:   enrollmentRepo,
	}
}

// ExportToFile writes a complete backup to the given path
func (s *BackupService) ExportToFile(path string) error {
	backup := &BackupData{
		Version:    "1",
		ExportedAt: time.Now(),
	}

	var err error
	if backup.Users, err = s.userRepo.GetAllUsers(); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if backup.Children, err = s.exportChildren(); err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	for _, user := range backup.Users {
		rels, err := s.relationshipRepo.GetRelationshipsForParent(user.ID)
		if err != nil {
			return fmt.Errorf("failed to export relationships: %w", err)
		}
		backup.Relationships = append(backup.Relationships, rels...)

		requests, err := s.requestRepo.GetRequestsByParent(user.ID)
		if err != nil {
			return fmt.Errorf("failed to export requests: %w", err)
		}
		backup.Requests = append(backup.Requests, requests...)
	}
	if backup.Programs, err = s.programRepo.GetAllPrograms(); err != nil {
		return fmt.Errorf("failed to export programs: %w", err)
	}
	for _, program := range backup.Programs {
		enrollments, err := s.enrollmentRepo.GetEnrollmentsByProgram(program.ID)
		if err != nil {
			return fmt.Errorf("failed to export enrollments: %w", err)
		}
		backup.Enrollments = append(backup.Enrollments, enrollments...)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return nil
}

// ImportFromFile restores a backup written by ExportToFile. When clear is
// true the existing portal tables are emptied first.
func (s *BackupService) ImportFromFile(path string, clear bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup BackupData
	if err := json.Unmarshal(content, &backup); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		// Children of relationships first; foreign keys cascade but order
		// keeps the intent readable
		for _, table := range []string{"audit_log", "enrollments", "association_requests", "parent_child_relationships", "children", "programs", "users"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	for _, user := range backup.Users {
		if _, err := tx.Exec(
			"INSERT INTO users (id, email, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			user.ID, user.Email, user.Name, user.Role, user.CreatedAt, user.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to import user %d: %w", user.ID, err)
		}
	}

	for _, child := range backup.Children {
		if _, err := tx.Exec(
			`INSERT INTO children (id, first_name, last_name, date_of_birth,
				emergency_contact_name, emergency_contact_phone, medical_notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			child.ID, child.FirstName, child.LastName, child.DateOfBirth,
			child.EmergencyContactName, child.EmergencyContactPhone, child.MedicalNotes,
			child.CreatedAt, child.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to import child %d: %w", child.ID, err)
		}
	}

	for _, rel := range backup.Relationships {
		if _, err := tx.Exec(
			`INSERT INTO parent_child_relationships (id, parent_id, child_id, relationship_type,
				status, can_view_work, can_receive_notifications, assigned_by, assigned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rel.ID, rel.ParentID, rel.ChildID, rel.RelationshipType,
			rel.Status, rel.CanViewWork, rel.CanReceiveNotifications, rel.AssignedBy, rel.AssignedAt,
		); err != nil {
			return fmt.Errorf("failed to import relationship %d: %w", rel.ID, err)
		}
	}

	for _, req := range backup.Requests {
		if _, err := tx.Exec(
			`INSERT INTO association_requests (id, reference_code, parent_id, child_id, status,
				notes, requested_at, reviewed_at, reviewed_by, review_notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.ReferenceCode, req.ParentID, req.ChildID, req.Status,
			req.Notes, req.RequestedAt, req.ReviewedAt, req.ReviewedBy, req.ReviewNotes,
		); err != nil {
			return fmt.Errorf("failed to import request %d: %w", req.ID, err)
		}
	}

	for _, program := range backup.Programs {
		if _, err := tx.Exec(
			`INSERT INTO programs (id, name, description, status, max_participants, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			program.ID, program.Name, program.Description, program.Status,
			program.MaxParticipants, program.CreatedAt, program.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to import program %d: %w", program.ID, err)
		}
	}

	for _, enrollment := range backup.Enrollments {
		if _, err := tx.Exec(
			`INSERT INTO enrollments (id, program_id, child_id, child_name, status, notes, enrolled_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			enrollment.ID, enrollment.ProgramID, enrollment.ChildID, enrollment.ChildName,
			enrollment.Status, enrollment.Notes, enrollment.EnrolledAt, enrollment.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to import enrollment %d: %w", enrollment.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	return nil
}

func (s *BackupService) exportChildren() ([]models.Child, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, date_of_birth,
		       emergency_contact_name, emergency_contact_phone, medical_notes,
		       created_at, updated_at
		FROM children
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(
			&child.ID,
			&child.FirstName,
			&child.LastName,
			&child.DateOfBirth,
			&child.EmergencyContactName,
			&child.EmergencyContactPhone,
			&child.MedicalNotes,
			&child.CreatedAt,
			&child.UpdatedAt,
		); err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return children, rows.Err()
}
