package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"brightsteps/internal/service"
)

// ParentHandler serves the parent-facing endpoints: submitting association
// requests, browsing linked children, and enrolling them into programs.
type ParentHandler struct {
	associationService *service.AssociationService
	enrollmentService  *service.EnrollmentService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(associationService *service.AssociationService, enrollmentService *service.EnrollmentService) *ParentHandler {
	return &ParentHandler{
		associationService: associationService,
		enrollmentService:  enrollmentService,
	}
}

// SubmitRequest handles POST /api/requests
func (h *ParentHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload submitRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	spec := service.ChildSpec{
		ChildID:               payload.ChildID,
		FirstName:             payload.FirstName,
		LastName:              payload.LastName,
		EmergencyContactName:  payload.EmergencyContactName,
		EmergencyContactPhone: payload.EmergencyContactPhone,
		MedicalNotes:          payload.MedicalNotes,
	}
	if payload.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", payload.DateOfBirth)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date of birth, expected YYYY-MM-DD", err)
			return
		}
		spec.DateOfBirth = &dob
	}

	request, err := h.associationService.SubmitRequest(user.ID, spec, payload.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRequestView(request))
}

// ListRequests handles GET /api/requests
func (h *ParentHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requests, err := h.associationService.GetParentRequests(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRequestViews(requests))
}

// ListChildren handles GET /api/children
func (h *ParentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	children, err := h.associationService.GetParentChildren(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toChildViews(children))
}

// ListPrograms handles GET /api/programs
func (h *ParentHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.enrollmentService.GetPublishedPrograms()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProgramViews(programs))
}

// GetProgramOccupancy handles GET /api/programs/{id}/occupancy
func (h *ParentHandler) GetProgramOccupancy(w http.ResponseWriter, r *http.Request) {
	programID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid program ID", err)
		return
	}

	occupancy, err := h.enrollmentService.GetOccupancy(programID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, occupancy)
}

// RequestEnrollment handles POST /api/enrollments
func (h *ParentHandler) RequestEnrollment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload enrollmentRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	enrollment, err := h.enrollmentService.RequestEnrollment(user.ID, payload.ProgramID, payload.ChildID, payload.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEnrollmentView(enrollment))
}

// ListEnrollments handles GET /api/enrollments
func (h *ParentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	enrollments, err := h.enrollmentService.GetParentEnrollments(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEnrollmentViews(enrollments))
}
