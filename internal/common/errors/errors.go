// internal/common/errors/errors.go

// Package errors provides standardized error handling for the intake flow
// and its collaborators.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Intake workflow errors. These are recoverable and surface as workflow
// state, never as aborts.
const (
	ErrCodeIncompleteField ErrorCode = "INCOMPLETE_FIELD"
	ErrCodeMissingConsent  ErrorCode = "MISSING_CONSENT"
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	ErrCodeDurationNotOffered ErrorCode = "DURATION_NOT_OFFERED"

	ErrCodeSubmissionFailed    ErrorCode = "SUBMISSION_FAILED"
	ErrCodeSubmissionInFlight  ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeDuplicateSubmission ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeRecordInvalid       ErrorCode = "RECORD_INVALID"
)

// Collaborator errors.
const (
	ErrCodeStoreWriteFailed   ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeStoreReadFailed    ErrorCode = "STORE_READ_FAILED"
	ErrCodeDocumentNotFound   ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeUploadFailed       ErrorCode = "UPLOAD_FAILED"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"
	ErrCodeIntentCreateFailed ErrorCode = "INTENT_CREATE_FAILED"
	ErrCodeWebhookInvalid     ErrorCode = "WEBHOOK_INVALID"
	ErrCodeAuditInsertFailed  ErrorCode = "AUDIT_INSERT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewIncompleteFieldError names the step whose required fields are missing.
func NewIncompleteFieldError(step, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteField,
		Message:   fmt.Sprintf("Please complete the required fields on the %s step", step),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDurationNotOfferedError reports a requested stay length the program does
// not offer.
func NewDurationNotOfferedError(weeks int, programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDurationNotOffered,
		Message:   fmt.Sprintf("A stay of %d weeks is not offered for program %s", weeks, programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingConsentError is returned until the traveler affirms the
// insurance acknowledgement.
func NewMissingConsentError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingConsent,
		Message:   "Please confirm that you understand travel insurance is mandatory",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthenticatedError is defensive; the Account gate should make it
// unreachable.
func NewUnauthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthenticated,
		Message:   "You must be signed in to submit an application",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError wraps a store or network failure behind a generic
// retry message. The draft is preserved by the caller.
func NewSubmissionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   "We could not submit your application. Please try again.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInFlightError rejects a second submit while one is pending.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "Your application is already being submitted",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSubmissionError reports an idempotency-token replay.
func NewDuplicateSubmissionError(token string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSubmission,
		Message:   "This application has already been submitted",
		Details:   fmt.Sprintf("idempotencyToken: %s", token),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordInvalidError reports a record that failed the schema check before
// the write was attempted.
func NewRecordInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordInvalid,
		Message:   "Assembled application record failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenInvalidError reports a session token the identity provider rejected.
func NewTokenInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenInvalid,
		Message:   "Session token was rejected by the identity provider",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentNotFoundError reports a missing document read.
func NewDocumentNotFoundError(collection, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Document not found",
		Details:   fmt.Sprintf("%s/%s", collection, key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError reports a blob-store upload failure.
func NewUploadFailedError(object string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "File upload failed. Please try again.",
		Details:   fmt.Sprintf("object: %s, error: %s", object, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentCreateFailedError reports a payment-processor failure during
// intent creation.
func NewIntentCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentCreateFailed,
		Message:   "Error occurred during payment initialization",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
