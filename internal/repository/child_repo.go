package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// ChildRepository handles database operations for child records
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `id, first_name, last_name, date_of_birth,
	emergency_contact_name, emergency_contact_phone, medical_notes,
	created_at, updated_at`

// CreateChild inserts a new child record and fills in its ID
func (r *ChildRepository) CreateChild(child *models.Child) error {
	query := `
		INSERT INTO children (first_name, last_name, date_of_birth,
			emergency_contact_name, emergency_contact_phone, medical_notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		child.FirstName,
		child.LastName,
		child.DateOfBirth,
		child.EmergencyContactName,
		child.EmergencyContactPhone,
		child.MedicalNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}

	child.ID = id
	child.CreatedAt = time.Now()
	child.UpdatedAt = time.Now()
	return nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(id int64) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChild(r.db.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildByName retrieves a child by exact first/last name match. Returns
// the oldest record when several share a name.
func (r *ChildRepository) GetChildByName(firstName, lastName string) (*models.Child, error) {
	query := "SELECT " + childColumns + ` FROM children
		WHERE first_name = ? AND last_name = ?
		ORDER BY created_at ASC
		LIMIT 1`
	child, err := scanChild(r.db.QueryRow(query, firstName, lastName))
	if err != nil {
		return nil, fmt.Errorf("failed to get child by name: %w", err)
	}
	return child, nil
}

// GetChildrenForParent retrieves all children the parent has an approved
// relationship with
func (r *ChildRepository) GetChildrenForParent(parentID int64) ([]models.Child, error) {
	query := `
		SELECT c.id, c.first_name, c.last_name, c.date_of_birth,
		       c.emergency_contact_name, c.emergency_contact_phone, c.medical_notes,
		       c.created_at, c.updated_at
		FROM children c
		INNER JOIN parent_child_relationships pcr ON c.id = pcr.child_id
		WHERE pcr.parent_id = ? AND pcr.status = ?
		ORDER BY c.first_name, c.last_name
	`
	rows, err := r.db.Query(query, parentID, models.RelationshipStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
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
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// UpdateChild updates a child's contact and medical details
func (r *ChildRepository) UpdateChild(child *models.Child) error {
	query := `
		UPDATE children
		SET emergency_contact_name = ?, emergency_contact_phone = ?,
		    medical_notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		child.EmergencyContactName,
		child.EmergencyContactPhone,
		child.MedicalNotes,
		child.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

func scanChild(row *sql.Row) (*models.Child, error) {
	child := &models.Child{}
	err := row.Scan(
		&child.ID,
		&child.FirstName,
		&child.LastName,
		&child.DateOfBirth,
		&child.EmergencyContactName,
		&child.EmergencyContactPhone,
		&child.MedicalNotes,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return child, nil
}
