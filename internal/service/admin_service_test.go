package service

import (
	"errors"
	"testing"

	"brightsteps/internal/models"
)

func TestWouldViolateAdminFloor(t *testing.T) {
	env := newTestEnv(t)
	admin1 := env.createUser(t, "admin1@example.com", models.RoleAdmin)
	admin2 := env.createUser(t, "admin2@example.com", models.RoleAdmin)
	customer := env.createUser(t, "parent@example.com", models.RoleCustomer)

	tests := []struct {
		name     string
		ids      []int64
		expected bool
	}{
		{
			name:     "no users selected",
			ids:      nil,
			expected: false,
		},
		{
			name:     "customer only",
			ids:      []int64{customer.ID},
			expected: false,
		},
		{
			name:     "one of two admins",
			ids:      []int64{admin1.ID},
			expected: false,
		},
		{
			name:     "both admins",
			ids:      []int64{admin1.ID, admin2.ID},
			expected: true,
		},
		{
			name:     "both admins plus customer",
			ids:      []int64{admin1.ID, admin2.ID, customer.ID},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violates, err := env.adminService.WouldViolateAdminFloor(tt.ids)
			if err != nil {
				t.Fatalf("WouldViolateAdminFloor() failed: %v", err)
			}
			if violates != tt.expected {
				t.Errorf("WouldViolateAdminFloor(%v) = %v, want %v", tt.ids, violates, tt.expected)
			}
		})
	}
}

func TestBulkDemoteLastAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	env.createUser(t, "parent@example.com", models.RoleCustomer)

	_, err := env.adminService.ApplyBulkUserAction(admin.ID, BulkActionDemote, []int64{admin.ID}, "")
	if !errors.Is(err, ErrAdminFloorViolation) {
		t.Fatalf("ApplyBulkUserAction() error = %v, want ErrAdminFloorViolation", err)
	}

	// The refused action must not have written anything
	reloaded, err := env.userRepo.GetUserByID(admin.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if reloaded.Role != models.RoleAdmin {
		t.Errorf("Role = %v, want admin after refused demotion", reloaded.Role)
	}

	entries, err := env.adminService.GetRecentAuditEntries(10)
	if err != nil {
		t.Fatalf("GetRecentAuditEntries() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d audit entries, want 0 for a refused action", len(entries))
	}
}

func TestBulkDeleteAllAdmins(t *testing.T) {
	env := newTestEnv(t)
	admin1 := env.createUser(t, "admin1@example.com", models.RoleAdmin)
	admin2 := env.createUser(t, "admin2@example.com", models.RoleAdmin)
	customer := env.createUser(t, "parent@example.com", models.RoleCustomer)

	// Deleting the whole admin set is refused even when mixed with others
	_, err := env.adminService.ApplyBulkUserAction(admin1.ID, BulkActionDelete, []int64{admin1.ID, admin2.ID, customer.ID}, "")
	if !errors.Is(err, ErrAdminFloorViolation) {
		t.Fatalf("ApplyBulkUserAction() error = %v, want ErrAdminFloorViolation", err)
	}

	users, err := env.adminService.GetAllUsers()
	if err != nil {
		t.Fatalf("GetAllUsers() failed: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("got %d users, want 3 untouched users", len(users))
	}

	// Deleting one admin while another remains is allowed
	result, err := env.adminService.ApplyBulkUserAction(admin1.ID, BulkActionDelete, []int64{admin2.ID}, "")
	if err != nil {
		t.Fatalf("ApplyBulkUserAction() failed: %v", err)
	}
	if result.Affected != 1 {
		t.Errorf("Affected = %d, want 1", result.Affected)
	}

	reloaded, err := env.userRepo.GetUserByID(admin2.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if reloaded != nil {
		t.Error("admin2 should have been deleted")
	}
}

func TestBulkPromote(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parentA := env.createUser(t, "a@example.com", models.RoleCustomer)
	parentB := env.createUser(t, "b@example.com", models.RoleCustomer)

	result, err := env.adminService.ApplyBulkUserAction(admin.ID, BulkActionPromote, []int64{parentA.ID, parentB.ID}, "")
	if err != nil {
		t.Fatalf("ApplyBulkUserAction() failed: %v", err)
	}
	if result.Affected != 2 {
		t.Errorf("Affected = %d, want 2", result.Affected)
	}
	if result.BatchID == "" {
		t.Error("BatchID should be set")
	}

	for _, id := range []int64{parentA.ID, parentB.ID} {
		user, err := env.userRepo.GetUserByID(id)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if !user.IsAdmin() {
			t.Errorf("user %d role = %v, want admin", id, user.Role)
		}
	}

	// One entry per affected user plus the batch summary
	entries, err := env.auditRepo.GetByBatch(result.BatchID)
	if err != nil {
		t.Fatalf("GetByBatch() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d audit entries, want 3", len(entries))
	}

	summaries := 0
	for _, entry := range entries {
		if entry.Action == models.AuditActionSummary {
			summaries++
		}
		if entry.ActorID == nil || *entry.ActorID != admin.ID {
			t.Errorf("ActorID = %v, want %d", entry.ActorID, admin.ID)
		}
	}
	if summaries != 1 {
		t.Errorf("got %d summary entries, want 1", summaries)
	}
}

func TestBulkDemoteWithRemainingAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin1 := env.createUser(t, "admin1@example.com", models.RoleAdmin)
	admin2 := env.createUser(t, "admin2@example.com", models.RoleAdmin)

	result, err := env.adminService.ApplyBulkUserAction(admin1.ID, BulkActionDemote, []int64{admin2.ID}, "")
	if err != nil {
		t.Fatalf("ApplyBulkUserAction() failed: %v", err)
	}
	if result.Affected != 1 {
		t.Errorf("Affected = %d, want 1", result.Affected)
	}

	reloaded, err := env.userRepo.GetUserByID(admin2.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if reloaded.Role != models.RoleCustomer {
		t.Errorf("Role = %v, want customer", reloaded.Role)
	}
}

func TestBulkActionValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)

	_, err := env.adminService.ApplyBulkUserAction(admin.ID, BulkActionPromote, nil, "")
	if !errors.Is(err, ErrNoUsersSelected) {
		t.Errorf("empty selection error = %v, want ErrNoUsersSelected", err)
	}

	_, err = env.adminService.ApplyBulkUserAction(admin.ID, "explode", []int64{parent.ID}, "")
	if !errors.Is(err, ErrUnknownBulkAction) {
		t.Errorf("unknown action error = %v, want ErrUnknownBulkAction", err)
	}
}
