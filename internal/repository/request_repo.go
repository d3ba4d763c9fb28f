package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// RequestRepository handles database operations for association requests
type RequestRepository struct {
	db *database.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, reference_code, parent_id, child_id, status,
	notes, requested_at, reviewed_at, reviewed_by, review_notes`

// CreateRequest inserts a new pending request and fills in its ID
func (r *RequestRepository) CreateRequest(req *models.AssociationRequest) error {
	query := `
		INSERT INTO association_requests (reference_code, parent_id, child_id, status, notes)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		req.ReferenceCode,
		req.ParentID,
		req.ChildID,
		models.RequestStatusPending,
		req.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create association request: %w", err)
	}

	req.ID = id
	req.Status = models.RequestStatusPending
	req.RequestedAt = time.Now()
	return nil
}

// GetRequestByID retrieves a request by ID
func (r *RequestRepository) GetRequestByID(id int64) (*models.AssociationRequest, error) {
	query := "SELECT " + requestColumns + " FROM association_requests WHERE id = ?"
	req, err := scanRequest(r.db.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get association request: %w", err)
	}
	return req, nil
}

// GetRequestsByParent retrieves all requests submitted by a parent
func (r *RequestRepository) GetRequestsByParent(parentID int64) ([]models.AssociationRequest, error) {
	query := "SELECT " + requestColumns + ` FROM association_requests
		WHERE parent_id = ?
		ORDER BY requested_at DESC`
	return r.queryRequests(query, parentID)
}

// GetRequestsByStatus retrieves all requests in the given status
func (r *RequestRepository) GetRequestsByStatus(status string) ([]models.AssociationRequest, error) {
	query := "SELECT " + requestColumns + ` FROM association_requests
		WHERE status = ?
		ORDER BY requested_at ASC`
	return r.queryRequests(query, status)
}

// HasPendingRequest checks whether a pending request exists for the
// (parent, child) pair
func (r *RequestRepository) HasPendingRequest(parentID, childID int64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM association_requests
		WHERE parent_id = ? AND child_id = ? AND status = ?
	`
	var count int
	err := r.db.QueryRow(query, parentID, childID, models.RequestStatusPending).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending requests: %w", err)
	}
	return count > 0, nil
}

// Reject marks a pending request rejected and stamps the review fields.
// The WHERE status guard makes terminality race-safe: a request reviewed by
// someone else in the meantime is reported via ErrNotPending.
func (r *RequestRepository) Reject(id, reviewerID int64, notes string) error {
	query := `
		UPDATE association_requests
		SET status = ?, reviewed_at = ?, reviewed_by = ?, review_notes = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query,
		models.RequestStatusRejected,
		time.Now(),
		reviewerID,
		notes,
		id,
		models.RequestStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read reject result: %w", err)
	}
	if rows == 0 {
		return ErrNotPending
	}
	return nil
}

// Approve marks a pending request approved and creates the resulting
// relationship, in that order, inside one transaction. If the relationship
// insert fails (duplicate or store error) the transaction rolls back and the
// request remains pending, so a failed approval is always safely retriable.
func (r *RequestRepository) Approve(id, reviewerID int64, notes string, rel *models.ParentChildRelationship) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE association_requests
		SET status = ?, reviewed_at = ?, reviewed_by = ?, review_notes = ?
		WHERE id = ? AND status = ?
	`
	result, err := tx.Exec(updateQuery,
		models.RequestStatusApproved,
		time.Now(),
		reviewerID,
		notes,
		id,
		models.RequestStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read approve result: %w", err)
	}
	if rows == 0 {
		return ErrNotPending
	}

	// Pre-check inside the transaction; the unique constraint below is the
	// backstop for anything that slips through.
	var existing int
	countQuery := `
		SELECT COUNT(*) FROM parent_child_relationships
		WHERE parent_id = ? AND child_id = ?
	`
	if err := tx.QueryRow(countQuery, rel.ParentID, rel.ChildID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check existing relationship: %w", err)
	}
	if existing > 0 {
		return ErrDuplicateRelationship
	}

	insertQuery := `
		INSERT INTO parent_child_relationships
			(parent_id, child_id, relationship_type, status,
			 can_view_work, can_receive_notifications, assigned_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	relID, err := tx.ExecReturningID(insertQuery,
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	rel.ID = relID
	rel.AssignedAt = time.Now()
	return nil
}

func (r *RequestRepository) queryRequests(query string, args ...interface{}) ([]models.AssociationRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query association requests: %w", err)
	}
	defer rows.Close()

	var requests []models.AssociationRequest
	for rows.Next() {
		var req models.AssociationRequest
		if err := rows.Scan(
			&req.ID,
			&req.ReferenceCode,
			&req.ParentID,
			&req.ChildID,
			&req.Status,
			&req.Notes,
			&req.RequestedAt,
			&req.ReviewedAt,
			&req.ReviewedBy,
			&req.ReviewNotes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan association request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func scanRequest(row *sql.Row) (*models.AssociationRequest, error) {
	req := &models.AssociationRequest{}
	err := row.Scan(
		&req.ID,
		&req.ReferenceCode,
		&req.ParentID,
		&req.ChildID,
		&req.Status,
		&req.Notes,
		&req.RequestedAt,
		&req.ReviewedAt,
		&req.ReviewedBy,
		&req.ReviewNotes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}
