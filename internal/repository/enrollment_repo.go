package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *database.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *database.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, program_id, child_id, child_name, status, notes, enrolled_at, updated_at`

// CountOccupied counts enrollments that consume a capacity slot
// (everything except cancelled)
func (r *EnrollmentRepository) CountOccupied(programID int64) (int, error) {
	count, err := countOccupied(r.db, programID)
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// InsertIfCapacity inserts a pending enrollment, re-deriving occupancy
// inside the insert transaction so two concurrent admissions cannot both
// take the last slot. The program row is locked first where the dialect
// needs it, which serializes concurrent admissions on PostgreSQL and
// MySQL. A nil max means no ceiling. Returns ErrCapacityExceeded without
// writing when the program is full.
func (r *EnrollmentRepository) InsertIfCapacity(enrollment *models.Enrollment, max *int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if max != nil {
		lockQuery := "SELECT id FROM programs WHERE id = ?"
		if clause := r.db.Dialect.RowLockClause(); clause != "" {
			lockQuery += " " + clause
		}
		var lockedID int64
		if err := tx.QueryRow(lockQuery, enrollment.ProgramID).Scan(&lockedID); err != nil {
			return fmt.Errorf("failed to lock program row: %w", err)
		}

		occupied, err := countOccupied(tx, enrollment.ProgramID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		if occupied >= *max {
			return ErrCapacityExceeded
		}
	}

	query := `
		INSERT INTO enrollments (program_id, child_id, child_name, status, notes)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := tx.ExecReturningID(query,
		enrollment.ProgramID,
		enrollment.ChildID,
		enrollment.ChildName,
		models.EnrollmentStatusPending,
		enrollment.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	enrollment.ID = id
	enrollment.Status = models.EnrollmentStatusPending
	enrollment.EnrolledAt = time.Now()
	enrollment.UpdatedAt = time.Now()
	return nil
}

// GetEnrollmentByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetEnrollmentByID(id int64) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE id = ?"
	enrollment := &models.Enrollment{}
	err := r.db.QueryRow(query, id).Scan(
		&enrollment.ID,
		&enrollment.ProgramID,
		&enrollment.ChildID,
		&enrollment.ChildName,
		&enrollment.Status,
		&enrollment.Notes,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// GetEnrollmentsByProgram retrieves all enrollments for a program
func (r *EnrollmentRepository) GetEnrollmentsByProgram(programID int64) ([]models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + ` FROM enrollments
		WHERE program_id = ?
		ORDER BY enrolled_at ASC`
	return r.queryEnrollments(query, programID)
}

// GetEnrollmentsForParent retrieves enrollments for every child the parent
// has an approved relationship with
func (r *EnrollmentRepository) GetEnrollmentsForParent(parentID int64) ([]models.Enrollment, error) {
	query := `
		SELECT e.id, e.program_id, e.child_id, e.child_name, e.status, e.notes,
		       e.enrolled_at, e.updated_at
		FROM enrollments e
		INNER JOIN parent_child_relationships pcr ON e.child_id = pcr.child_id
		WHERE pcr.parent_id = ? AND pcr.status = ?
		ORDER BY e.enrolled_at DESC
	`
	return r.queryEnrollments(query, parentID, models.RelationshipStatusApproved)
}

// UpdateStatus transitions an enrollment to the given status. Returns false
// when no row matched the ID.
func (r *EnrollmentRepository) UpdateStatus(id int64, status string) (bool, error) {
	query := `
		UPDATE enrollments
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update enrollment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return rows > 0, nil
}

func countOccupied(dbtx database.DBTX, programID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM enrollments
		WHERE program_id = ? AND status != ?
	`
	var count int
	err := dbtx.QueryRow(query, programID, models.EnrollmentStatusCancelled).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EnrollmentRepository) queryEnrollments(query string, args ...interface{}) ([]models.Enrollment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.ProgramID,
			&enrollment.ChildID,
			&enrollment.ChildName,
			&enrollment.Status,
			&enrollment.Notes,
			&enrollment.EnrolledAt,
			&enrollment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	return enrollments, rows.Err()
}
