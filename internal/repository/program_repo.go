package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// ProgramRepository handles database operations for programs
type ProgramRepository struct {
	db *database.DB
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *database.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, name, description, status, max_participants, created_at, updated_at`

// CreateProgram inserts a new program and fills in its ID
func (r *ProgramRepository) CreateProgram(program *models.Program) error {
	query := `
		INSERT INTO programs (name, description, status, max_participants)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		program.Name,
		program.Description,
		program.Status,
		program.MaxParticipants,
	)
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}

	program.ID = id
	program.CreatedAt = time.Now()
	program.UpdatedAt = time.Now()
	return nil
}

// GetProgramByID retrieves a program by ID
func (r *ProgramRepository) GetProgramByID(id int64) (*models.Program, error) {
	query := "SELECT " + programColumns + " FROM programs WHERE id = ?"
	program := &models.Program{}
	err := r.db.QueryRow(query, id).Scan(
		&program.ID,
		&program.Name,
		&program.Description,
		&program.Status,
		&program.MaxParticipants,
		&program.CreatedAt,
		&program.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return program, nil
}

// GetProgramsByStatus retrieves all programs in the given status
func (r *ProgramRepository) GetProgramsByStatus(status string) ([]models.Program, error) {
	query := "SELECT " + programColumns + ` FROM programs
		WHERE status = ?
		ORDER BY name ASC`
	return r.queryPrograms(query, status)
}

// GetAllPrograms retrieves all programs
func (r *ProgramRepository) GetAllPrograms() ([]models.Program, error) {
	query := "SELECT " + programColumns + " FROM programs ORDER BY name ASC"
	return r.queryPrograms(query)
}

// UpdateProgram updates a program's details, status and capacity ceiling
func (r *ProgramRepository) UpdateProgram(program *models.Program) error {
	query := `
		UPDATE programs
		SET name = ?, description = ?, status = ?, max_participants = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		program.Name,
		program.Description,
		program.Status,
		program.MaxParticipants,
		program.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) queryPrograms(query string, args ...interface{}) ([]models.Program, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		var program models.Program
		if err := rows.Scan(
			&program.ID,
			&program.Name,
			&program.Description,
			&program.Status,
			&program.MaxParticipants,
			&program.CreatedAt,
			&program.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, program)
	}

	return programs, rows.Err()
}
