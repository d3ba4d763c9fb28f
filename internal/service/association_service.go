package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brightsteps/internal/models"
	"brightsteps/internal/repository"
	"brightsteps/internal/utils"
)

// ChildSpec identifies the child an association request targets: either an
// existing record by ID, identifying fields to match an existing record by
// name, or the fields for a new record when no match is found.
type ChildSpec struct {
	ChildID               int64
	FirstName             string
	LastName              string
	DateOfBirth           *time.Time
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalNotes          string
}

// AssociationService governs the lifecycle of parent-child association
// requests: submission by a parent, review by an administrator, and the
// relationship created on approval.
type AssociationService struct {
	requestRepo      *repository.RequestRepository
	relationshipRepo *repository.RelationshipRepository
	childRepo        *repository.ChildRepository
	userRepo         *repository.UserRepository
	notifyService    *NotifyService
}

// NewAssociationService creates a new association service
func NewAssociationService(
	requestRepo *repository.RequestRepository,
	relationshipRepo *repository.RelationshipRepository,
	childRepo *repository.ChildRepository,
	userRepo *repository.UserRepository,
	notifyService *NotifyService,
) *AssociationService {
	return &AssociationService{
		requestRepo:      requestRepo,
		relationshipRepo: relationshipRepo,
		childRepo:        childRepo,
		userRepo:         userRepo,
		notifyService:    notifyService,
	}
}

// SubmitRequest creates a pending association request for the parent and
// the resolved child. An approved relationship for the pair fails with
// ErrAlreadyAssociated; a pending request for the pair fails with
// ErrRequestPending. Both pre-checks are advisory; the relationship
// uniqueness constraint remains the race-safe guard at approval time.
func (s *AssociationService) SubmitRequest(parentID int64, spec ChildSpec, notes string) (*models.AssociationRequest, error) {
	child, err := s.resolveChild(spec)
	if err != nil {
		return nil, err
	}

	associated, err := s.relationshipRepo.HasApprovedRelationship(parentID, child.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing relationship: %w", err)
	}
	if associated {
		return nil, ErrAlreadyAssociated
	}

	pending, err := s.requestRepo.HasPendingRequest(parentID, child.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrRequestPending
	}

	request := &models.AssociationRequest{
		ReferenceCode: utils.NewReferenceCode(),
		ParentID:      parentID,
		ChildID:       child.ID,
		Notes:         notes,
	}
	if err := s.requestRepo.CreateRequest(request); err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}

	return request, nil
}

// ReviewRequest concludes a pending request. Rejection stamps the review
// fields and has no further effect. Approval stamps the review fields and
// creates the relationship; if relationship creation fails the request is
// left pending and the error is surfaced, so review is retriable after a
// failed approval but never after a concluded one.
func (s *AssociationService) ReviewRequest(requestID, reviewerID int64, decision, notes string) (*models.AssociationRequest, error) {
	request, err := s.requestRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if !request.IsPending() {
		return nil, ErrAlreadyReviewed
	}

	switch decision {
	case models.DecisionReject:
		if err := s.requestRepo.Reject(requestID, reviewerID, notes); err != nil {
			if errors.Is(err, repository.ErrNotPending) {
				return nil, ErrAlreadyReviewed
			}
			return nil, fmt.Errorf("failed to reject request: %w", err)
		}

	case models.DecisionApprove:
		relationship := &models.ParentChildRelationship{
			ParentID:                request.ParentID,
			ChildID:                 request.ChildID,
			RelationshipType:        "parent",
			Status:                  models.RelationshipStatusApproved,
			CanViewWork:             true,
			CanReceiveNotifications: true,
			AssignedBy:              reviewerID,
		}
		if err := s.requestRepo.Approve(requestID, reviewerID, notes, relationship); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotPending):
				return nil, ErrAlreadyReviewed
			case errors.Is(err, repository.ErrDuplicateRelationship):
				return nil, ErrAlreadyAssociated
			default:
				return nil, fmt.Errorf("failed to approve request: %w", err)
			}
		}

	default:
		return nil, ErrInvalidDecision
	}

	reviewed, err := s.requestRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}

	s.notifyReviewDecision(reviewed)

	return reviewed, nil
}

// LinkChild creates a relationship directly, bypassing the request
// workflow. This is the administrator link action; the same duplicate guard
// applies.
func (s *AssociationService) LinkChild(adminID, parentID, childID int64, relationshipType string) (*models.ParentChildRelationship, error) {
	parent, err := s.userRepo.GetUserByID(parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent: %w", err)
	}
	if parent == nil {
		return nil, ErrUserNotFound
	}

	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	if relationshipType == "" {
		relationshipType = "parent"
	}

	relationship := &models.ParentChildRelationship{
		ParentID:                parentID,
		ChildID:                 childID,
		RelationshipType:        relationshipType,
		Status:                  models.RelationshipStatusApproved,
		CanViewWork:             true,
		CanReceiveNotifications: true,
		AssignedBy:              adminID,
	}
	if err := s.relationshipRepo.CreateRelationship(relationship); err != nil {
		if errors.Is(err, repository.ErrDuplicateRelationship) {
			return nil, ErrAlreadyAssociated
		}
		return nil, fmt.Errorf("failed to link child: %w", err)
	}

	return relationship, nil
}

// GetParentRequests retrieves all requests submitted by a parent
func (s *AssociationService) GetParentRequests(parentID int64) ([]models.AssociationRequest, error) {
	requests, err := s.requestRepo.GetRequestsByParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent requests: %w", err)
	}
	return requests, nil
}

// GetPendingRequests retrieves all requests awaiting review
func (s *AssociationService) GetPendingRequests() ([]models.AssociationRequest, error) {
	requests, err := s.requestRepo.GetRequestsByStatus(models.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	return requests, nil
}

// GetParentChildren retrieves the children a parent has an approved
// relationship with
func (s *AssociationService) GetParentChildren(parentID int64) ([]models.Child, error) {
	children, err := s.childRepo.GetChildrenForParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	return children, nil
}

// UpdateChildDetails updates a child's emergency contact and medical notes.
// Name and date of birth are identity fields and stay immutable.
func (s *AssociationService) UpdateChildDetails(childID int64, contactName, contactPhone, medicalNotes string) (*models.Child, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	child.EmergencyContactName = contactName
	child.EmergencyContactPhone = contactPhone
	child.MedicalNotes = medicalNotes
	if err := s.childRepo.UpdateChild(child); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return child, nil
}

// resolveChild finds the child a spec refers to, creating a new record when
// the spec carries fields for a child the system has not seen
func (s *AssociationService) resolveChild(spec ChildSpec) (*models.Child, error) {
	if spec.ChildID > 0 {
		child, err := s.childRepo.GetChildByID(spec.ChildID)
		if err != nil {
			return nil, fmt.Errorf("failed to load child: %w", err)
		}
		if child == nil {
			return nil, ErrChildNotFound
		}
		return child, nil
	}

	firstName := strings.TrimSpace(spec.FirstName)
	lastName := strings.TrimSpace(spec.LastName)
	if firstName == "" || lastName == "" {
		return nil, errors.New("child first and last name are required")
	}

	child, err := s.childRepo.GetChildByName(firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to match child by name: %w", err)
	}
	if child != nil {
		return child, nil
	}

	child = &models.Child{
		FirstName:             firstName,
		LastName:              lastName,
		DateOfBirth:           spec.DateOfBirth,
		EmergencyContactName:  spec.EmergencyContactName,
		EmergencyContactPhone: spec.EmergencyContactPhone,
		MedicalNotes:          spec.MedicalNotes,
	}
	if err := s.childRepo.CreateChild(child); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return child, nil
}

// notifyReviewDecision emails the requesting parent about the outcome.
// Delivery problems are logged, never surfaced to the reviewer.
func (s *AssociationService) notifyReviewDecision(request *models.AssociationRequest) {
	if s.notifyService == nil || request == nil {
		return
	}

	parent, err := s.userRepo.GetUserByID(request.ParentID)
	if err != nil || parent == nil {
		log.Printf("Warning: could not load parent %d for review notification: %v", request.ParentID, err)
		return
	}
	child, err := s.childRepo.GetChildByID(request.ChildID)
	if err != nil || child == nil {
		log.Printf("Warning: could not load child %d for review notification: %v", request.ChildID, err)
		return
	}

	approved := request.Status == models.RequestStatusApproved
	if err := s.notifyService.SendReviewDecision(parent.Email, parent.Name, child.FullName(), approved, request.ReviewNotes); err != nil {
		log.Printf("Warning: failed to send review notification to %s: %v", parent.Email, err)
	}
}
