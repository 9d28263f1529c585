package domain

import (
	"errors"
	"fmt"
)

// Fatal lookup errors surfaced to HTTP as 404/409.
var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateAbhaID = errors.New("patient with this ABHA ID already exists")
	ErrDuplicateEmail  = errors.New("email already exists")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// MissingAssessmentError marks a disease that cannot be predicted because
// the patient has no assessment of that type. The orchestrator converts it
// into null score/level fields instead of aborting the run.
type MissingAssessmentError struct {
	Disease string
}

func (e *MissingAssessmentError) Error() string {
	return fmt.Sprintf("no %s assessment recorded for patient", e.Disease)
}

// StorageError wraps a failed snapshot write so callers can tell storage
// failures apart from prediction-level partial failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
