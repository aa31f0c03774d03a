package services

import (
	"errors"
	"fmt"
)

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	// Lookup failures
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotFound  = errors.New("exam session not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrSettingNotFound  = errors.New("setting not found")

	// Exam start guards
	ErrTestNotActive      = errors.New("test is not active")
	ErrTestNotOpenYet     = errors.New("test window has not opened yet")
	ErrTestExpired        = errors.New("test window has closed")
	ErrTestAlreadyTaken   = errors.New("test already taken and retake not granted")
	ErrMobileNotAllowed   = errors.New("mobile access is not allowed for this test")
	ErrNoStudentProfile   = errors.New("no student profile linked to this account")
	ErrTestNotAssigned    = errors.New("test is not assigned to the student's group")
	ErrTestHasNoQuestions = errors.New("test has no questions")
	ErrStudentNotActive   = errors.New("student profile is not active")

	// Submit guards
	ErrSessionNotStarted       = errors.New("no exam session in progress")
	ErrSessionAlreadySubmitted = errors.New("exam session already submitted")
	ErrSessionNotOwned         = errors.New("exam session belongs to another student")

	// Test management
	ErrTestHasSessions = errors.New("test has recorded sessions and cannot be deleted")
)

// PermissionError carries who tried what on which resource.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError marks a domain rule violation that is not a permission
// or validation problem.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}
