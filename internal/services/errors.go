package services

import (
	"errors"
	"fmt"

	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
)

// ValidationErrors is re-exported so handlers can match it without
// importing the validator package directly.
type ValidationErrors = validator.ValidationErrors

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentTypeNotFound = errors.New("assessment type not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrOptionNotFound         = errors.New("option not found")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrAnswerNotFound         = errors.New("answer not found")

	ErrSubmissionNotActive      = errors.New("submission is not in progress")
	ErrSubmissionNotSubmitted   = errors.New("submission has not been submitted")
	ErrSubmissionAlreadyGraded  = errors.New("submission is already graded")
	ErrAttemptLimitExceeded     = errors.New("attempt limit exceeded")
	ErrAssessmentNotAvailable   = errors.New("assessment is not open for submissions")
	ErrQuestionNotInAssessment  = errors.New("question does not belong to this assessment")
	ErrAnswerNotManuallyGraded  = errors.New("answer type is graded automatically")
)

// BusinessRuleError is a domain rule violation that is not a plain
// validation failure. Code is stable and machine readable.
type BusinessRuleError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBusinessRuleError(code, message string, details map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// PermissionError reports a denied action on a resource
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
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
