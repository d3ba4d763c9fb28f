package service

import (
	"path/filepath"
	"testing"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
	"brightsteps/internal/repository"
)

// testEnv wires the full service stack against a throwaway SQLite database
// so tests exercise the real transactions and constraints.
type testEnv struct {
	db *database.DB

	userRepo         *repository.UserRepository
	childRepo        *repository.ChildRepository
	relationshipRepo *repository.RelationshipRepository
	requestRepo      *repository.RequestRepository
	programRepo      *repository.ProgramRepository
	enrollmentRepo   *repository.EnrollmentRepository
	auditRepo        *repository.AuditRepository

	associationService *AssociationService
	adminService       *AdminService
	enrollmentService  *EnrollmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Connect("sqlite", "", dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		childRepo:        repository.NewChildRepository(db),
		relationshipRepo: repository.NewRelationshipRepository(db),
		requestRepo:      repository.NewRequestRepository(db),
		programRepo:      repository.NewProgramRepository(db),
		enrollmentRepo:   repository.NewEnrollmentRepository(db),
		auditRepo:        repository.NewAuditRepository(db),
	}

	notifyService, err := NewNotifyService("", "", "")
	if err != nil {
		t.Fatalf("Failed to create notify service: %v", err)
	}

	env.associationService = NewAssociationService(env.requestRepo, env.relationshipRepo, env.childRepo, env.userRepo, notifyService)
	env.adminService = NewAdminService(env.userRepo, env.auditRepo, notifyService)
	env.enrollmentService = NewEnrollmentService(env.enrollmentRepo, env.programRepo, env.childRepo, env.relationshipRepo)

	return env
}

// createUser creates a user with the given role. The repository promotes the
// very first user to admin regardless, so tests create an admin first.
func (env *testEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user, err := env.userRepo.CreateUser(email, email, role)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func (env *testEnv) createChild(t *testing.T, firstName, lastName string) *models.Child {
	t.Helper()
	child := &models.Child{FirstName: firstName, LastName: lastName}
	if err := env.childRepo.CreateChild(child); err != nil {
		t.Fatalf("Failed to create child %s %s: %v", firstName, lastName, err)
	}
	return child
}

func (env *testEnv) createProgram(t *testing.T, name string, maxParticipants *int) *models.Program {
	t.Helper()
	program, err := env.enrollmentService.CreateProgram(name, "", models.ProgramStatusPublished, maxParticipants)
	if err != nil {
		t.Fatalf("Failed to create program %s: %v", name, err)
	}
	return program
}

// linkChild creates an approved relationship directly
func (env *testEnv) linkChild(t *testing.T, adminID, parentID, childID int64) {
	t.Helper()
	if _, err := env.associationService.LinkChild(adminID, parentID, childID, "parent"); err != nil {
		t.Fatalf("Failed to link parent %d to child %d: %v", parentID, childID, err)
	}
}

func intPtr(n int) *int {
	return &n
}
