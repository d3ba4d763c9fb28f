package service

import (
	"errors"
	"testing"

	"brightsteps/internal/models"
)

func TestSubmitRequest(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	_ = admin

	request, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{
		FirstName: "Maya",
		LastName:  "Osei",
	}, "my daughter")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	if request.Status != models.RequestStatusPending {
		t.Errorf("Status = %v, want %v", request.Status, models.RequestStatusPending)
	}
	if request.ReferenceCode == "" {
		t.Error("ReferenceCode should be set")
	}
	if request.ChildID == 0 {
		t.Error("ChildID should reference the created child record")
	}

	// A second request for the same pair while the first is pending is refused
	_, err = env.associationService.SubmitRequest(parent.ID, ChildSpec{ChildID: request.ChildID}, "")
	if !errors.Is(err, ErrRequestPending) {
		t.Errorf("duplicate submit error = %v, want ErrRequestPending", err)
	}
}

func TestSubmitRequestMatchesExistingChild(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@example.com", models.RoleAdmin)
	parentA := env.createUser(t, "a@example.com", models.RoleCustomer)
	parentB := env.createUser(t, "b@example.com", models.RoleCustomer)

	first, err := env.associationService.SubmitRequest(parentA.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	// Another parent naming the same child matches the existing record
	// instead of creating a duplicate
	second, err := env.associationService.SubmitRequest(parentB.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}
	if second.ChildID != first.ChildID {
		t.Errorf("ChildID = %d, want %d (same child record)", second.ChildID, first.ChildID)
	}
}

func TestSubmitRequestAlreadyLinked(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	child := env.createChild(t, "Maya", "Osei")
	env.linkChild(t, admin.ID, parent.ID, child.ID)

	_, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{ChildID: child.ID}, "")
	if !errors.Is(err, ErrAlreadyAssociated) {
		t.Errorf("SubmitRequest() error = %v, want ErrAlreadyAssociated", err)
	}
}

func TestReviewRequestApprove(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)

	request, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	reviewed, err := env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionApprove, "checked records")
	if err != nil {
		t.Fatalf("ReviewRequest() failed: %v", err)
	}
	if reviewed.Status != models.RequestStatusApproved {
		t.Errorf("Status = %v, want %v", reviewed.Status, models.RequestStatusApproved)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != admin.ID {
		t.Errorf("ReviewedBy = %v, want %d", reviewed.ReviewedBy, admin.ID)
	}

	linked, err := env.relationshipRepo.HasApprovedRelationship(parent.ID, request.ChildID)
	if err != nil {
		t.Fatalf("HasApprovedRelationship() failed: %v", err)
	}
	if !linked {
		t.Error("approval should have created an approved relationship")
	}

	// A concluded review cannot be reopened
	_, err = env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionReject, "changed my mind")
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second review error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestReviewRequestReject(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)

	request, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	reviewed, err := env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionReject, "could not verify")
	if err != nil {
		t.Fatalf("ReviewRequest() failed: %v", err)
	}
	if reviewed.Status != models.RequestStatusRejected {
		t.Errorf("Status = %v, want %v", reviewed.Status, models.RequestStatusRejected)
	}

	linked, err := env.relationshipRepo.HasApprovedRelationship(parent.ID, request.ChildID)
	if err != nil {
		t.Fatalf("HasApprovedRelationship() failed: %v", err)
	}
	if linked {
		t.Error("rejection must not create a relationship")
	}

	_, err = env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionApprove, "")
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second review error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestReviewRequestInvalidDecision(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)

	request, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	_, err = env.associationService.ReviewRequest(request.ID, admin.ID, "maybe", "")
	if !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("ReviewRequest() error = %v, want ErrInvalidDecision", err)
	}

	reloaded, err := env.requestRepo.GetRequestByID(request.ID)
	if err != nil {
		t.Fatalf("GetRequestByID() failed: %v", err)
	}
	if !reloaded.IsPending() {
		t.Errorf("Status = %v, want pending after an invalid decision", reloaded.Status)
	}
}

func TestReviewRequestApproveDuplicateRelationship(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)

	request, err := env.associationService.SubmitRequest(parent.ID, ChildSpec{FirstName: "Maya", LastName: "Osei"}, "")
	if err != nil {
		t.Fatalf("SubmitRequest() failed: %v", err)
	}

	// The relationship appears through the direct admin link while the
	// request sits in the queue
	env.linkChild(t, admin.ID, parent.ID, request.ChildID)

	_, err = env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionApprove, "")
	if !errors.Is(err, ErrAlreadyAssociated) {
		t.Fatalf("ReviewRequest() error = %v, want ErrAlreadyAssociated", err)
	}

	// The failed approval rolled back, so the request is still pending and
	// can be rejected instead
	reloaded, err := env.requestRepo.GetRequestByID(request.ID)
	if err != nil {
		t.Fatalf("GetRequestByID() failed: %v", err)
	}
	if !reloaded.IsPending() {
		t.Fatalf("Status = %v, want pending after failed approval", reloaded.Status)
	}

	reviewed, err := env.associationService.ReviewRequest(request.ID, admin.ID, models.DecisionReject, "already linked")
	if err != nil {
		t.Fatalf("ReviewRequest() retry failed: %v", err)
	}
	if reviewed.Status != models.RequestStatusRejected {
		t.Errorf("Status = %v, want %v", reviewed.Status, models.RequestStatusRejected)
	}
}

func TestLinkChildDuplicate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	child := env.createChild(t, "Maya", "Osei")

	env.linkChild(t, admin.ID, parent.ID, child.ID)

	_, err := env.associationService.LinkChild(admin.ID, parent.ID, child.ID, "parent")
	if !errors.Is(err, ErrAlreadyAssociated) {
		t.Errorf("LinkChild() error = %v, want ErrAlreadyAssociated", err)
	}
}

func TestUpdateChildDetails(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@example.com", models.RoleAdmin)
	child := env.createChild(t, "Maya", "Osei")

	updated, err := env.associationService.UpdateChildDetails(child.ID, "Ama Osei", "555-0100", "peanut allergy")
	if err != nil {
		t.Fatalf("UpdateChildDetails() failed: %v", err)
	}
	if updated.EmergencyContactName != "Ama Osei" || updated.MedicalNotes != "peanut allergy" {
		t.Errorf("updated child = %+v, want new contact details", updated)
	}

	reloaded, err := env.childRepo.GetChildByID(child.ID)
	if err != nil {
		t.Fatalf("GetChildByID() failed: %v", err)
	}
	if reloaded.EmergencyContactPhone != "555-0100" {
		t.Errorf("EmergencyContactPhone = %q, want %q", reloaded.EmergencyContactPhone, "555-0100")
	}

	_, err = env.associationService.UpdateChildDetails(9999, "", "", "")
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("UpdateChildDetails() error = %v, want ErrChildNotFound", err)
	}
}

func TestGetParentChildren(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	parent := env.createUser(t, "parent@example.com", models.RoleCustomer)
	other := env.createUser(t, "other@example.com", models.RoleCustomer)

	childA := env.createChild(t, "Maya", "Osei")
	childB := env.createChild(t, "Kofi", "Osei")
	env.linkChild(t, admin.ID, parent.ID, childA.ID)
	env.linkChild(t, admin.ID, other.ID, childB.ID)

	children, err := env.associationService.GetParentChildren(parent.ID)
	if err != nil {
		t.Fatalf("GetParentChildren() failed: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}
	if children[0].ID != childA.ID {
		t.Errorf("child ID = %d, want %d", children[0].ID, childA.ID)
	}
}
