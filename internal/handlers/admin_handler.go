package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"brightsteps/internal/service"
)

// AdminHandler serves the administrator endpoints: reviewing association
// requests, bulk user actions, program management and the audit log.
type AdminHandler struct {
	associationService *service.AssociationService
	adminService       *service.AdminService
	enrollmentService  *service.EnrollmentService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	associationService *service.AssociationService,
	adminService *service.AdminService,
	enrollmentService *service.EnrollmentService,
) *AdminHandler {
	return &AdminHandler{
		associationService: associationService,
		adminService:       adminService,
		enrollmentService:  enrollmentService,
	}
}

// ListPendingRequests handles GET /api/admin/requests
func (h *AdminHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.associationService.GetPendingRequests()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRequestViews(requests))
}

// ReviewRequest handles POST /api/admin/requests/{id}/review
func (h *AdminHandler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID", err)
		return
	}

	var payload reviewRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	request, err := h.associationService.ReviewRequest(requestID, user.ID, payload.Decision, payload.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRequestView(request))
}

// LinkChild handles POST /api/admin/relationships
func (h *AdminHandler) LinkChild(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload linkChildPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	relationship, err := h.associationService.LinkChild(user.ID, payload.ParentID, payload.ChildID, payload.RelationshipType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRelationshipView(relationship))
}

// UpdateChild handles PUT /api/admin/children/{id}
func (h *AdminHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", err)
		return
	}

	var payload childDetailsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	child, err := h.associationService.UpdateChildDetails(childID, payload.EmergencyContactName, payload.EmergencyContactPhone, payload.MedicalNotes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toChildDetailView(child))
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.GetAllUsers()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserViews(users))
}

// BulkUserAction handles POST /api/admin/users/bulk
func (h *AdminHandler) BulkUserAction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload bulkUserActionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.adminService.ApplyBulkUserAction(user.ID, payload.Action, payload.UserIDs, payload.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CheckAdminFloor handles GET /api/admin/users/floor-check?ids=1,2,3
// It answers whether demoting or deleting the given users would leave the
// system without an admin, for confirmation prompts ahead of a bulk action.
func (h *AdminHandler) CheckAdminFloor(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user ID list", err)
			return
		}
		ids = append(ids, id)
	}

	violates, err := h.adminService.WouldViolateAdminFloor(ids)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"would_violate": violates})
}

// ListAllPrograms handles GET /api/admin/programs
func (h *AdminHandler) ListAllPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.enrollmentService.GetAllPrograms()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProgramViews(programs))
}

// CreateProgram handles POST /api/admin/programs
func (h *AdminHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var payload programPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if payload.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Program name is required", nil)
		return
	}

	program, err := h.enrollmentService.CreateProgram(payload.Name, payload.Description, payload.Status, payload.MaxParticipants)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toProgramView(program))
}

// UpdateProgram handles PUT /api/admin/programs/{id}
func (h *AdminHandler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	programID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid program ID", err)
		return
	}

	var payload programPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if payload.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Program name is required", nil)
		return
	}

	program, err := h.enrollmentService.UpdateProgram(programID, payload.Name, payload.Description, payload.Status, payload.MaxParticipants)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProgramView(program))
}

// ListProgramEnrollments handles GET /api/admin/programs/{id}/enrollments
func (h *AdminHandler) ListProgramEnrollments(w http.ResponseWriter, r *http.Request) {
	programID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid program ID", err)
		return
	}

	enrollments, err := h.enrollmentService.GetProgramEnrollments(programID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEnrollmentViews(enrollments))
}

// SetEnrollmentStatus handles PUT /api/admin/enrollments/{id}/status
func (h *AdminHandler) SetEnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enrollment ID", err)
		return
	}

	var payload enrollmentStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	enrollment, err := h.enrollmentService.SetEnrollmentStatus(enrollmentID, payload.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEnrollmentView(enrollment))
}

// ListAuditEntries handles GET /api/admin/audit?limit=50
func (h *AdminHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	entries, err := h.adminService.GetRecentAuditEntries(limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toAuditViews(entries))
}
