package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"brightsteps/internal/service"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}

// respondWithError writes a JSON error response and logs the underlying
// error when one is present
func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses
// and specific user-facing messages. Refusals (floor violations, full
// programs, concluded reviews) are deliberate outcomes and get their own
// message rather than a generic failure string.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, service.ErrAlreadyReviewed):
		respondWithError(w, http.StatusConflict, "This request has already been reviewed", nil)
	case errors.Is(err, service.ErrAlreadyAssociated):
		respondWithError(w, http.StatusConflict, "This parent is already linked to this child", nil)
	case errors.Is(err, service.ErrRequestPending):
		respondWithError(w, http.StatusConflict, "A request for this child is already awaiting review", nil)
	case errors.Is(err, service.ErrAdminFloorViolation):
		respondWithError(w, http.StatusConflict, "Cannot remove all admin users from the system", nil)
	case errors.Is(err, service.ErrProgramNotOpen):
		respondWithError(w, http.StatusConflict, "This program is not open for enrollment", nil)
	case errors.Is(err, service.ErrProgramFull):
		respondWithError(w, http.StatusConflict, "This program is full", nil)
	case errors.Is(err, service.ErrEnrollmentFinished):
		respondWithError(w, http.StatusConflict, "This enrollment is already completed or cancelled", nil)

	case errors.Is(err, service.ErrNotLinked):
		respondWithError(w, http.StatusForbidden, "You are not linked to this child", nil)

	case errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrUnknownBulkAction),
		errors.Is(err, service.ErrNoUsersSelected):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)

	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
