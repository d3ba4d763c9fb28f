package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"brightsteps/internal/models"
	"brightsteps/internal/repository"
	"brightsteps/internal/utils"
)

// Bulk user actions
const (
	BulkActionPromote = "promote"
	BulkActionDemote  = "demote"
	BulkActionDelete  = "delete"
	BulkActionNotify  = "notify"
)

// BulkActionResult summarizes an applied bulk user action
type BulkActionResult struct {
	BatchID  string `json:"batch_id"`
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

// AdminService applies administrator mutations on user accounts under the
// admin-floor invariant: no action may leave the system without at least
// one admin user.
type AdminService struct {
	userRepo      *repository.UserRepository
	auditRepo     *repository.AuditRepository
	notifyService *NotifyService
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, notifyService *NotifyService) *AdminService {
	return &AdminService{
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		notifyService: notifyService,
	}
}

// WouldViolateAdminFloor reports whether demoting or deleting every user in
// affectedIDs would leave zero admins. It reasons about the post-action
// admin set directly (admins minus affected set), so it is correct for any
// batch size. This check is advisory for UI warnings; the same computation
// runs again inside the write transaction when the action is applied.
func (s *AdminService) WouldViolateAdminFloor(affectedIDs []int64) (bool, error) {
	remaining, err := s.userRepo.CountAdminsExcluding(affectedIDs)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate admin floor: %w", err)
	}
	return remaining == 0, nil
}

// ApplyBulkUserAction performs one logical action across the selected
// users: all rows are written or none are. Demote and delete fail with
// ErrAdminFloorViolation, without any writes, when the batch would remove
// every remaining admin. Every applied action appends one audit entry per
// user plus a batch summary entry.
func (s *AdminService) ApplyBulkUserAction(actorID int64, action string, userIDs []int64, message string) (*BulkActionResult, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoUsersSelected
	}

	// Snapshot the affected users before mutating for audit old-values and
	// notification addresses
	before, err := s.userRepo.GetUsersByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load affected users: %w", err)
	}

	switch action {
	case BulkActionPromote:
		if err := s.userRepo.PromoteUsers(userIDs); err != nil {
			return nil, fmt.Errorf("failed to promote users: %w", err)
		}

	case BulkActionDemote:
		if err := s.userRepo.DemoteUsers(userIDs); err != nil {
			if errors.Is(err, repository.ErrNoAdminsRemaining) {
				return nil, ErrAdminFloorViolation
			}
			return nil, fmt.Errorf("failed to demote users: %w", err)
		}

	case BulkActionDelete:
		if err := s.userRepo.DeleteUsers(userIDs); err != nil {
			if errors.Is(err, repository.ErrNoAdminsRemaining) {
				return nil, ErrAdminFloorViolation
			}
			return nil, fmt.Errorf("failed to delete users: %w", err)
		}

	case BulkActionNotify:
		// No state mutation; delivery goes through the SES collaborator
		s.sendBulkNotice(before, message)

	default:
		return nil, ErrUnknownBulkAction
	}

	batchID := utils.NewReferenceCode()
	if err := s.appendAudit(batchID, actorID, action, userIDs, before); err != nil {
		return nil, fmt.Errorf("bulk action applied but audit append failed: %w", err)
	}

	return &BulkActionResult{
		BatchID:  batchID,
		Action:   action,
		Affected: len(userIDs),
	}, nil
}

// GetAllUsers retrieves all portal accounts
func (s *AdminService) GetAllUsers() ([]models.User, error) {
	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetRecentAuditEntries retrieves the most recent audit log entries
func (s *AdminService) GetRecentAuditEntries(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.GetRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, nil
}

func (s *AdminService) appendAudit(batchID string, actorID int64, action string, userIDs []int64, before []models.User) error {
	rolesByID := make(map[int64]string, len(before))
	for _, user := range before {
		rolesByID[user.ID] = user.Role
	}

	newRole := ""
	switch action {
	case BulkActionPromote:
		newRole = models.RoleAdmin
	case BulkActionDemote:
		newRole = models.RoleCustomer
	}

	entries := make([]models.AuditEntry, 0, len(userIDs)+1)
	for _, id := range userIDs {
		oldValues, _ := json.Marshal(map[string]string{"role": rolesByID[id]})
		newValues := ""
		if newRole != "" {
			encoded, _ := json.Marshal(map[string]string{"role": newRole})
			newValues = string(encoded)
		}
		entries = append(entries, models.AuditEntry{
			BatchID:   batchID,
			TableName: "users",
			RecordID:  id,
			Action:    action,
			OldValues: string(oldValues),
			NewValues: newValues,
			ActorID:   &actorID,
		})
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"action":   action,
		"user_ids": userIDs,
	})
	entries = append(entries, models.AuditEntry{
		BatchID:   batchID,
		TableName: "users",
		Action:    models.AuditActionSummary,
		NewValues: string(summary),
		ActorID:   &actorID,
	})

	return s.auditRepo.AppendBatch(entries)
}

func (s *AdminService) sendBulkNotice(users []models.User, message string) {
	if s.notifyService == nil {
		return
	}

	emails := make([]string, 0, len(users))
	for _, user := range users {
		if user.Email != "" {
			emails = append(emails, user.Email)
		}
	}

	if err := s.notifyService.SendBulkNotice(emails, "A message from your program administrators", message); err != nil {
		log.Printf("Warning: failed to send bulk notice: %v", err)
	}
}
