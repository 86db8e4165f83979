package util

import "errors"

var (
	ErrEmailRegistered         = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInvalidToken            = errors.New("invalid or expired assessment token")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
	ErrAttemptsExhausted       = errors.New("maximum attempts exceeded")
	ErrNoQuestions             = errors.New("assessment has no questions")
	ErrInvalidAssessmentConfig = errors.New("assessment total marks must be positive")
	ErrSubmissionConflict      = errors.New("attempt was finalized by a concurrent submission")
	ErrResultNotReady          = errors.New("attempt has no result yet")
	ErrAssessmentActive        = errors.New("assessment is active and cannot be edited")
	ErrAlreadyAssigned         = errors.New("student already assigned to this assessment")
)
