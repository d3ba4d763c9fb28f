package service

import (
	"errors"
	"fmt"

	"brightsteps/internal/models"
	"brightsteps/internal/repository"
)

// EnrollmentService controls admission of children into programs against
// each program's capacity ceiling.
type EnrollmentService struct {
	enrollmentRepo   *repository.EnrollmentRepository
	programRepo      *repository.ProgramRepository
	childRepo        *repository.ChildRepository
	relationshipRepo *repository.RelationshipRepository
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	programRepo *repository.ProgramRepository,
	childRepo *repository.ChildRepository,
	relationshipRepo *repository.RelationshipRepository,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo:   enrollmentRepo,
		programRepo:      programRepo,
		childRepo:        childRepo,
		relationshipRepo: relationshipRepo,
	}
}

// GetOccupancy reports how full a program is. Current counts every
// enrollment that is not cancelled; a program without a ceiling is never
// full.
func (s *EnrollmentService) GetOccupancy(programID int64) (*models.Occupancy, error) {
	program, err := s.programRepo.GetProgramByID(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	current, err := s.enrollmentRepo.CountOccupied(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return &models.Occupancy{
		Current: current,
		Max:     program.MaxParticipants,
		IsFull:  program.MaxParticipants != nil && current >= *program.MaxParticipants,
	}, nil
}

// RequestEnrollment admits a child into a program as a pending enrollment.
// Admission requires an approved relationship between the calling parent
// and the child, not merely a name match, and the program must be
// published; parents never enroll into drafts or archived programs even
// if they learn the ID. The capacity check runs inside the insert
// transaction, so concurrent admissions cannot overshoot the ceiling.
// Activation is a separate administrator action.
func (s *EnrollmentService) RequestEnrollment(parentID, programID, childID int64, notes string) (*models.Enrollment, error) {
	linked, err := s.relationshipRepo.HasApprovedRelationship(parentID, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify relationship: %w", err)
	}
	if !linked {
		return nil, ErrNotLinked
	}

	program, err := s.programRepo.GetProgramByID(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}
	if program.Status != models.ProgramStatusPublished {
		return nil, ErrProgramNotOpen
	}

	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	enrollment := &models.Enrollment{
		ProgramID: programID,
		ChildID:   childID,
		ChildName: child.FullName(),
		Notes:     notes,
	}
	if err := s.enrollmentRepo.InsertIfCapacity(enrollment, program.MaxParticipants); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, ErrProgramFull
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return enrollment, nil
}

// SetEnrollmentStatus transitions an enrollment, an administrator action
// outside the admission path. Completed and cancelled enrollments are
// terminal.
func (s *EnrollmentService) SetEnrollmentStatus(enrollmentID int64, status string) (*models.Enrollment, error) {
	switch status {
	case models.EnrollmentStatusActive,
		models.EnrollmentStatusCompleted,
		models.EnrollmentStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	enrollment, err := s.enrollmentRepo.GetEnrollmentByID(enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.IsFinished() {
		return nil, ErrEnrollmentFinished
	}

	updated, err := s.enrollmentRepo.UpdateStatus(enrollmentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}
	if !updated {
		return nil, ErrEnrollmentNotFound
	}

	enrollment.Status = status
	return enrollment, nil
}

// GetProgramEnrollments retrieves all enrollments for a program
func (s *EnrollmentService) GetProgramEnrollments(programID int64) ([]models.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetEnrollmentsByProgram(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	return enrollments, nil
}

// GetParentEnrollments retrieves enrollments for every child linked to the
// parent
func (s *EnrollmentService) GetParentEnrollments(parentID int64) ([]models.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetEnrollmentsForParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	return enrollments, nil
}

// GetPublishedPrograms retrieves the programs parents can enroll into
func (s *EnrollmentService) GetPublishedPrograms() ([]models.Program, error) {
	programs, err := s.programRepo.GetProgramsByStatus(models.ProgramStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to get programs: %w", err)
	}
	return programs, nil
}

// GetAllPrograms retrieves every program regardless of status
func (s *EnrollmentService) GetAllPrograms() ([]models.Program, error) {
	programs, err := s.programRepo.GetAllPrograms()
	if err != nil {
		return nil, fmt.Errorf("failed to get programs: %w", err)
	}
	return programs, nil
}

// CreateProgram creates a new program. An empty status defaults to draft.
func (s *EnrollmentService) CreateProgram(name, description, status string, maxParticipants *int) (*models.Program, error) {
	if status == "" {
		status = models.ProgramStatusDraft
	}
	switch status {
	case models.ProgramStatusDraft, models.ProgramStatusPublished, models.ProgramStatusArchived:
	default:
		return nil, ErrInvalidStatus
	}

	program := &models.Program{
		Name:            name,
		Description:     description,
		Status:          status,
		MaxParticipants: maxParticipants,
	}
	if err := s.programRepo.CreateProgram(program); err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	return program, nil
}

// UpdateProgram updates a program's details, status and capacity ceiling.
// Lowering the ceiling below current occupancy is allowed; existing
// enrollments stand and new admissions are refused until occupancy drops.
func (s *EnrollmentService) UpdateProgram(programID int64, name, description, status string, maxParticipants *int) (*models.Program, error) {
	program, err := s.programRepo.GetProgramByID(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	switch status {
	case models.ProgramStatusDraft, models.ProgramStatusPublished, models.ProgramStatusArchived:
	default:
		return nil, ErrInvalidStatus
	}

	program.Name = name
	program.Description = description
	program.Status = status
	program.MaxParticipants = maxParticipants
	if err := s.programRepo.UpdateProgram(program); err != nil {
		return nil, fmt.Errorf("failed to update program: %w", err)
	}
	return program, nil
}
