package models

import "testing"

func TestAssociationRequestStates(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		pending  bool
		terminal bool
	}{
		{
			name:     "pending request",
			status:   RequestStatusPending,
			pending:  true,
			terminal: false,
		},
		{
			name:     "approved request",
			status:   RequestStatusApproved,
			pending:  false,
			terminal: true,
		},
		{
			name:     "rejected request",
			status:   RequestStatusRejected,
			pending:  false,
			terminal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &AssociationRequest{Status: tt.status}
			if got := request.IsPending(); got != tt.pending {
				t.Errorf("IsPending() = %v, want %v", got, tt.pending)
			}
			if got := request.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestEnrollmentCountsTowardOccupancy(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{
			name:     "pending counts",
			status:   EnrollmentStatusPending,
			expected: true,
		},
		{
			name:     "active counts",
			status:   EnrollmentStatusActive,
			expected: true,
		},
		{
			name:     "completed counts",
			status:   EnrollmentStatusCompleted,
			expected: true,
		},
		{
			name:     "cancelled releases the slot",
			status:   EnrollmentStatusCancelled,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enrollment := &Enrollment{Status: tt.status}
			if got := enrollment.CountsTowardOccupancy(); got != tt.expected {
				t.Errorf("CountsTowardOccupancy() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEnrollmentIsFinished(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{name: "pending", status: EnrollmentStatusPending, expected: false},
		{name: "active", status: EnrollmentStatusActive, expected: false},
		{name: "completed", status: EnrollmentStatusCompleted, expected: true},
		{name: "cancelled", status: EnrollmentStatusCancelled, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enrollment := &Enrollment{Status: tt.status}
			if got := enrollment.IsFinished(); got != tt.expected {
				t.Errorf("IsFinished() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestChildFullName(t *testing.T) {
	tests := []struct {
		name     string
		child    Child
		expected string
	}{
		{
			name:     "first and last name",
			child:    Child{FirstName: "Ada", LastName: "Lovelace"},
			expected: "Ada Lovelace",
		},
		{
			name:     "first name only",
			child:    Child{FirstName: "Ada"},
			expected: "Ada",
		},
		{
			name:     "empty",
			child:    Child{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.child.FullName(); got != tt.expected {
				t.Errorf("FullName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("IsAdmin() should return true for an admin user")
	}

	customer := &User{Role: RoleCustomer}
	if customer.IsAdmin() {
		t.Error("IsAdmin() should return false for a customer user")
	}
}
