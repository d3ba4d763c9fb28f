package utils

import "github.com/google/uuid"

// NewReferenceCode generates a unique identifier for association requests
// and audit batches
func NewReferenceCode() string {
	return uuid.New().String()
}
