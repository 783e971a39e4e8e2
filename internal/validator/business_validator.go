package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: newValidate()}
}

// newValidate builds a *validator.Validate with all custom rules.
func newValidate() *validator.Validate {
	validate := validator.New()
	registerBusinessRules(validate)
	return validate
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateAssessmentCreate validates assessment creation business rules
func (bv *BusinessValidator) ValidateAssessmentCreate(req *AssessmentCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateAvailabilityWindow(req.AvailableFrom, req.AvailableUntil)...)

	return errors
}

// ValidateAssessmentUpdate validates assessment update business rules
func (bv *BusinessValidator) ValidateAssessmentUpdate(req *AssessmentUpdateRequest, existing *models.Assessment) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	from := existing.AvailableFrom
	until := existing.AvailableUntil
	if req.AvailableFrom != nil {
		from = req.AvailableFrom
	}
	if req.AvailableUntil != nil {
		until = req.AvailableUntil
	}
	errors = append(errors, bv.validateAvailabilityWindow(from, until)...)

	// Lowering passing score mid-flight would reinterpret existing
	// grades, so active assessments keep theirs.
	if existing.Status == models.StatusActive {
		if req.PassingScore != nil && *req.PassingScore != existing.PassingScore {
			errors = append(errors, ValidationError{
				Field:   "passing_score",
				Message: "cannot be changed for active assessments",
				Value:   *req.PassingScore,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	qType := models.MultipleChoice
	if req.QuestionType != nil {
		qType = *req.QuestionType
	}

	switch qType {
	case models.Matching, models.FillBlank:
		if req.CorrectAnswer == nil || strings.TrimSpace(*req.CorrectAnswer) == "" {
			errors = append(errors, ValidationError{
				Field:   "correct_answer",
				Message: fmt.Sprintf("is required for %s questions", qType),
				Rule:    "business_logic",
			})
		}
	case models.TrueFalse:
		if len(req.Options) > 2 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "true/false questions accept at most two options",
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateSubmissionStart validates that an assessment is open for new
// submissions. The attempt limit is enforced by the caller, which knows
// whether a new attempt row is actually being created.
func (bv *BusinessValidator) ValidateSubmissionStart(assessment *models.Assessment) ValidationErrors {
	var errors ValidationErrors

	now := time.Now()

	if assessment.Status != models.StatusActive {
		errors = append(errors, ValidationError{
			Field:   "assessment_status",
			Message: "assessment is not active",
			Value:   assessment.Status,
			Rule:    "business_logic",
		})
	}

	if assessment.AvailableFrom != nil && now.Before(*assessment.AvailableFrom) {
		errors = append(errors, ValidationError{
			Field:   "available_from",
			Message: "assessment is not yet available",
			Value:   assessment.AvailableFrom,
			Rule:    "business_logic",
		})
	}

	if assessment.AvailableUntil != nil && now.After(*assessment.AvailableUntil) {
		errors = append(errors, ValidationError{
			Field:   "available_until",
			Message: "assessment is no longer available",
			Value:   assessment.AvailableUntil,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateStatusTransition validates assessment status transitions
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.AssessmentStatus, questionCount int) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.AssessmentStatus][]models.AssessmentStatus{
		models.StatusDraft:    {models.StatusActive, models.StatusArchived},
		models.StatusActive:   {models.StatusArchived},
		models.StatusArchived: {models.StatusActive},
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[currentStatus] {
		if newStatus == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	if newStatus == models.StatusActive && questionCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "assessment must have at least one question before publishing",
			Value:   questionCount,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateDeletePermission validates if an assessment can be deleted
func (bv *BusinessValidator) ValidateDeletePermission(hasSubmissions bool, status models.AssessmentStatus) ValidationErrors {
	var errors ValidationErrors

	if hasSubmissions {
		errors = append(errors, ValidationError{
			Field:   "submissions",
			Message: "cannot delete assessment with existing submissions",
			Value:   hasSubmissions,
			Rule:    "business_logic",
		})
	}

	if status == models.StatusActive {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "cannot delete active assessment",
			Value:   status,
			Rule:    "business_logic",
		})
	}

	return errors
}

func (bv *BusinessValidator) validateAvailabilityWindow(from, until *time.Time) ValidationErrors {
	var errors ValidationErrors

	if from != nil && until != nil && !until.After(*from) {
		errors = append(errors, ValidationError{
			Field:   "available_until",
			Message: "must be after available_from",
			Value:   until,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func registerBusinessRules(validate *validator.Validate) {
	// Passing score validation (0-100)
	validate.RegisterValidation("passing_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= 100
	})

	// Title validation (1-200 characters)
	validate.RegisterValidation("assessment_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Points range validation
	validate.RegisterValidation("points_range", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 0 && points <= 1000
	})

	// Question type validation
	validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qType := models.QuestionType(fl.Field().String())
		switch qType {
		case models.MultipleChoice, models.TrueFalse, models.Essay, models.Matching, models.FillBlank, models.Code:
			return true
		}
		return false
	})

	// Submission status validation
	validate.RegisterValidation("submission_status", func(fl validator.FieldLevel) bool {
		status := models.SubmissionStatus(fl.Field().String())
		switch status {
		case models.SubmissionInProgress, models.SubmissionSubmitted, models.SubmissionGraded, models.SubmissionNeedsReview:
			return true
		}
		return false
	})
}
