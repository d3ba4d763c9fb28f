package service

import (
	"errors"
	"testing"

	"brightsteps/internal/models"
)

func TestGetOccupancy(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Summer Camp", intPtr(2))

	childA := env.createChild(t, "Maya", "Osei")
	childB := env.createChild(t, "Kofi", "Osei")
	env.linkChild(t, admin.ID, parent.ID, childA.ID)
	env.linkChild(t, admin.ID, parent.ID, childB.ID)

	occupancy, err := env.enrollmentService.GetOccupancy(program.ID)
	if err != nil {
		t.Fatalf("GetOccupancy() failed: %v", err)
	}
	if occupancy.Current != 0 || occupancy.IsFull {
		t.Errorf("empty program occupancy = %+v, want current 0 and not full", occupancy)
	}

	first, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childA.ID, "")
	if err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}
	if _, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childB.ID, ""); err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}

	occupancy, err = env.enrollmentService.GetOccupancy(program.ID)
	if err != nil {
		t.Fatalf("GetOccupancy() failed: %v", err)
	}
	if occupancy.Current != 2 || !occupancy.IsFull {
		t.Errorf("occupancy = %+v, want current 2 and full", occupancy)
	}

	// Cancelling an enrollment releases its slot
	if _, err := env.enrollmentService.SetEnrollmentStatus(first.ID, models.EnrollmentStatusCancelled); err != nil {
		t.Fatalf("SetEnrollmentStatus() failed: %v", err)
	}

	occupancy, err = env.enrollmentService.GetOccupancy(program.ID)
	if err != nil {
		t.Fatalf("GetOccupancy() failed: %v", err)
	}
	if occupancy.Current != 1 || occupancy.IsFull {
		t.Errorf("occupancy after cancellation = %+v, want current 1 and not full", occupancy)
	}
}

func TestGetOccupancyNoCeiling(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Open Workshop", nil)

	for _, name := range []string{"Maya", "Kofi", "Ama"} {
		child := env.createChild(t, name, "Osei")
		env.linkChild(t, admin.ID, parent.ID, child.ID)
		if _, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, child.ID, ""); err != nil {
			t.Fatalf("RequestEnrollment() failed: %v", err)
		}
	}

	occupancy, err := env.enrollmentService.GetOccupancy(program.ID)
	if err != nil {
		t.Fatalf("GetOccupancy() failed: %v", err)
	}
	if occupancy.Max != nil {
		t.Errorf("Max = %v, want nil", occupancy.Max)
	}
	if occupancy.IsFull {
		t.Error("a program without a ceiling is never full")
	}
}

func TestRequestEnrollmentCapacity(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Chess Club", intPtr(1))

	childA := env.createChild(t, "Maya", "Osei")
	childB := env.createChild(t, "Kofi", "Osei")
	env.linkChild(t, admin.ID, parent.ID, childA.ID)
	env.linkChild(t, admin.ID, parent.ID, childB.ID)

	first, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childA.ID, "")
	if err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}
	if first.Status != models.EnrollmentStatusPending {
		t.Errorf("Status = %v, want pending", first.Status)
	}
	if first.ChildName != "Maya Osei" {
		t.Errorf("ChildName = %q, want %q", first.ChildName, "Maya Osei")
	}

	_, err = env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childB.ID, "")
	if !errors.Is(err, ErrProgramFull) {
		t.Fatalf("second enrollment error = %v, want ErrProgramFull", err)
	}

	// A cancelled slot can be reused
	if _, err := env.enrollmentService.SetEnrollmentStatus(first.ID, models.EnrollmentStatusCancelled); err != nil {
		t.Fatalf("SetEnrollmentStatus() failed: %v", err)
	}
	if _, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childB.ID, ""); err != nil {
		t.Fatalf("RequestEnrollment() after cancellation failed: %v", err)
	}
}

func TestRequestEnrollmentNotLinked(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Chess Club", nil)
	child := env.createChild(t, "Maya", "Osei")

	_, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, child.ID, "")
	if !errors.Is(err, ErrNotLinked) {
		t.Errorf("RequestEnrollment() error = %v, want ErrNotLinked", err)
	}
}

func TestRequestEnrollmentMissingProgram(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	child := env.createChild(t, "Maya", "Osei")
	env.linkChild(t, admin.ID, parent.ID, child.ID)

	_, err := env.enrollmentService.RequestEnrollment(parent.ID, 9999, child.ID, "")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("RequestEnrollment() error = %v, want ErrProgramNotFound", err)
	}
}

func TestRequestEnrollmentUnpublishedProgram(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	child := env.createChild(t, "Maya", "Osei")
	env.linkChild(t, admin.ID, parent.ID, child.ID)

	draft, err := env.enrollmentService.CreateProgram("Robotics Lab", "", models.ProgramStatusDraft, nil)
	if err != nil {
		t.Fatalf("CreateProgram() failed: %v", err)
	}

	// Knowing the program ID is not enough; only published programs admit
	_, err = env.enrollmentService.RequestEnrollment(parent.ID, draft.ID, child.ID, "")
	if !errors.Is(err, ErrProgramNotOpen) {
		t.Errorf("draft program enrollment error = %v, want ErrProgramNotOpen", err)
	}

	archived, err := env.enrollmentService.CreateProgram("Old Camp", "", models.ProgramStatusArchived, nil)
	if err != nil {
		t.Fatalf("CreateProgram() failed: %v", err)
	}
	_, err = env.enrollmentService.RequestEnrollment(parent.ID, archived.ID, child.ID, "")
	if !errors.Is(err, ErrProgramNotOpen) {
		t.Errorf("archived program enrollment error = %v, want ErrProgramNotOpen", err)
	}

	// Publishing opens admission
	if _, err := env.enrollmentService.UpdateProgram(draft.ID, draft.Name, "", models.ProgramStatusPublished, nil); err != nil {
		t.Fatalf("UpdateProgram() failed: %v", err)
	}
	if _, err := env.enrollmentService.RequestEnrollment(parent.ID, draft.ID, child.ID, ""); err != nil {
		t.Errorf("RequestEnrollment() after publish failed: %v", err)
	}
}

func TestSetEnrollmentStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Chess Club", nil)
	child := env.createChild(t, "Maya", "Osei")
	env.linkChild(t, admin.ID, parent.ID, child.ID)

	enrollment, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, child.ID, "")
	if err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}

	if _, err := env.enrollmentService.SetEnrollmentStatus(enrollment.ID, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status error = %v, want ErrInvalidStatus", err)
	}

	active, err := env.enrollmentService.SetEnrollmentStatus(enrollment.ID, models.EnrollmentStatusActive)
	if err != nil {
		t.Fatalf("SetEnrollmentStatus() failed: %v", err)
	}
	if active.Status != models.EnrollmentStatusActive {
		t.Errorf("Status = %v, want active", active.Status)
	}

	if _, err := env.enrollmentService.SetEnrollmentStatus(enrollment.ID, models.EnrollmentStatusCompleted); err != nil {
		t.Fatalf("SetEnrollmentStatus() failed: %v", err)
	}

	// Completed is terminal
	_, err = env.enrollmentService.SetEnrollmentStatus(enrollment.ID, models.EnrollmentStatusActive)
	if !errors.Is(err, ErrEnrollmentFinished) {
		t.Errorf("transition from completed error = %v, want ErrEnrollmentFinished", err)
	}
}

func TestUpdateProgramBelowOccupancy(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	program := env.createProgram(t, "Chess Club", intPtr(5))

	childA := env.createChild(t, "Maya", "Osei")
	childB := env.createChild(t, "Kofi", "Osei")
	env.linkChild(t, admin.ID, parent.ID, childA.ID)
	env.linkChild(t, admin.ID, parent.ID, childB.ID)

	if _, err := env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childA.ID, ""); err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}

	// Lowering the ceiling below occupancy keeps existing enrollments but
	// refuses new admissions
	if _, err := env.enrollmentService.UpdateProgram(program.ID, program.Name, "", program.Status, intPtr(1)); err != nil {
		t.Fatalf("UpdateProgram() failed: %v", err)
	}

	occupancy, err := env.enrollmentService.GetOccupancy(program.ID)
	if err != nil {
		t.Fatalf("GetOccupancy() failed: %v", err)
	}
	if occupancy.Current != 1 || !occupancy.IsFull {
		t.Errorf("occupancy = %+v, want current 1 and full", occupancy)
	}

	_, err = env.enrollmentService.RequestEnrollment(parent.ID, program.ID, childB.ID, "")
	if !errors.Is(err, ErrProgramFull) {
		t.Errorf("RequestEnrollment() error = %v, want ErrProgramFull", err)
	}
}
