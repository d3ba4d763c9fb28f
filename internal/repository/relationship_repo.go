package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// RelationshipRepository handles database operations for parent-child
// relationships
type RelationshipRepository struct {
	db *database.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *database.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// CreateRelationship inserts a relationship row and fills in its ID. The
// (parent_id, child_id) uniqueness constraint is the final duplicate guard;
// a constraint hit is returned as ErrDuplicateRelationship.
func (r *RelationshipRepository) CreateRelationship(rel *models.ParentChildRelationship) error {
	query := `
		INSERT INTO parent_child_relationships
			(parent_id, child_id, relationship_type, status,
			 can_view_work, can_receive_notifications, assigned_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		rel.ParentID,
		rel.ChildID,
		rel.RelationshipType,
		rel.Status,
		rel.CanViewWork,
		rel.CanReceiveNotifications,
		rel.AssignedBy,
	)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicateRelationship
		}
		return fmt.Errorf("failed to create relationship: %w", err)
	}

	rel.ID = id
	rel.AssignedAt = time.Now()
	return nil
}

// HasApprovedRelationship checks whether an approved relationship exists
// for the (parent, child) pair
func (r *RelationshipRepository) HasApprovedRelationship(parentID, childID int64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM parent_child_relationships
		WHERE parent_id = ? AND child_id = ? AND status = ?
	`
	var count int
	err := r.db.QueryRow(query, parentID, childID, models.RelationshipStatusApproved).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check relationship: %w", err)
	}
	return count > 0, nil
}

// GetRelationshipsForParent retrieves all relationships for a parent
func (r *RelationshipRepository) GetRelationshipsForParent(parentID int64) ([]models.ParentChildRelationship, error) {
	query := `
		SELECT id, parent_id, child_id, relationship_type, status,
		       can_view_work, can_receive_notifications, assigned_by, assigned_at
		FROM parent_child_relationships
		WHERE parent_id = ?
		ORDER BY assigned_at ASC
	`
	rows, err := r.db.Query(query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.ParentChildRelationship
	for rows.Next() {
		var rel models.ParentChildRelationship
		// assigned_by goes NULL when the assigning admin is later deleted
		var assignedBy sql.NullInt64
		if err := rows.Scan(
			&rel.ID,
			&rel.ParentID,
			&rel.ChildID,
			&rel.RelationshipType,
			&rel.Status,
			&rel.CanViewWork,
			&rel.CanReceiveNotifications,
			&assignedBy,
			&rel.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rel.AssignedBy = assignedBy.Int64
		rels = append(rels, rel)
	}

	return rels, rows.Err()
}
