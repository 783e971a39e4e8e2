package validator

import (
	"testing"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func hasFieldError(errs ValidationErrors, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidateAssessmentCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("empty request is valid", func(t *testing.T) {
		if errs := bv.ValidateAssessmentCreate(&AssessmentCreateRequest{}); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("passing score above 100 is rejected", func(t *testing.T) {
		req := &AssessmentCreateRequest{PassingScore: intPtr(120)}
		errs := bv.ValidateAssessmentCreate(req)
		if !hasFieldError(errs, "PassingScore") {
			t.Errorf("expected a passing score error, got %v", errs)
		}
	})

	t.Run("availability window must be ordered", func(t *testing.T) {
		from := time.Now()
		until := from.Add(-time.Hour)
		req := &AssessmentCreateRequest{
			AvailableFrom:  timePtr(from),
			AvailableUntil: timePtr(until),
		}
		errs := bv.ValidateAssessmentCreate(req)
		if !hasFieldError(errs, "available_until") {
			t.Errorf("expected an availability window error, got %v", errs)
		}
	})
}

func TestValidateAssessmentUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("passing score is frozen while active", func(t *testing.T) {
		existing := &models.Assessment{Status: models.StatusActive, PassingScore: 70}
		req := &AssessmentUpdateRequest{PassingScore: intPtr(60)}

		errs := bv.ValidateAssessmentUpdate(req, existing)
		if !hasFieldError(errs, "passing_score") {
			t.Errorf("expected a passing_score error, got %v", errs)
		}
	})

	t.Run("unchanged passing score on active assessment is fine", func(t *testing.T) {
		existing := &models.Assessment{Status: models.StatusActive, PassingScore: 70}
		req := &AssessmentUpdateRequest{PassingScore: intPtr(70)}

		if errs := bv.ValidateAssessmentUpdate(req, existing); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("draft assessment can change passing score", func(t *testing.T) {
		existing := &models.Assessment{Status: models.StatusDraft, PassingScore: 70}
		req := &AssessmentUpdateRequest{PassingScore: intPtr(60)}

		if errs := bv.ValidateAssessmentUpdate(req, existing); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestValidateQuestionCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("fill blank needs a correct answer", func(t *testing.T) {
		qType := models.FillBlank
		req := &QuestionCreateRequest{
			QuestionText: "The capital of France is ____",
			QuestionType: &qType,
		}
		errs := bv.ValidateQuestionCreate(req)
		if !hasFieldError(errs, "correct_answer") {
			t.Errorf("expected a correct_answer error, got %v", errs)
		}
	})

	t.Run("fill blank with correct answer passes", func(t *testing.T) {
		qType := models.FillBlank
		req := &QuestionCreateRequest{
			QuestionText:  "The capital of France is ____",
			QuestionType:  &qType,
			CorrectAnswer: strPtr("Paris"),
		}
		if errs := bv.ValidateQuestionCreate(req); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("true false rejects a third option", func(t *testing.T) {
		qType := models.TrueFalse
		req := &QuestionCreateRequest{
			QuestionText: "Go has generics",
			QuestionType: &qType,
			Options: []OptionCreateRequest{
				{OptionText: strPtr("True")},
				{OptionText: strPtr("False")},
				{OptionText: strPtr("Maybe")},
			},
		}
		errs := bv.ValidateQuestionCreate(req)
		if !hasFieldError(errs, "options") {
			t.Errorf("expected an options error, got %v", errs)
		}
	})

	t.Run("multiple choice defaults need no correct answer text", func(t *testing.T) {
		req := &QuestionCreateRequest{QuestionText: "Pick one"}
		if errs := bv.ValidateQuestionCreate(req); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestValidateSubmissionStart(t *testing.T) {
	bv := NewBusinessValidator()

	activeAssessment := func() *models.Assessment {
		return &models.Assessment{
			Status:          models.StatusActive,
			AttemptsAllowed: 2,
		}
	}

	t.Run("active assessment is open", func(t *testing.T) {
		if errs := bv.ValidateSubmissionStart(activeAssessment()); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("draft assessment is rejected", func(t *testing.T) {
		assessment := activeAssessment()
		assessment.Status = models.StatusDraft
		errs := bv.ValidateSubmissionStart(assessment)
		if !hasFieldError(errs, "assessment_status") {
			t.Errorf("expected a status error, got %v", errs)
		}
	})

	t.Run("not yet available", func(t *testing.T) {
		assessment := activeAssessment()
		assessment.AvailableFrom = timePtr(time.Now().Add(time.Hour))
		errs := bv.ValidateSubmissionStart(assessment)
		if !hasFieldError(errs, "available_from") {
			t.Errorf("expected an availability error, got %v", errs)
		}
	})

	t.Run("no longer available", func(t *testing.T) {
		assessment := activeAssessment()
		assessment.AvailableUntil = timePtr(time.Now().Add(-time.Hour))
		errs := bv.ValidateSubmissionStart(assessment)
		if !hasFieldError(errs, "available_until") {
			t.Errorf("expected an availability error, got %v", errs)
		}
	})
}

func TestValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name          string
		current       models.AssessmentStatus
		next          models.AssessmentStatus
		questionCount int
		wantErr       bool
	}{
		{"draft to active with questions", models.StatusDraft, models.StatusActive, 3, false},
		{"draft to active without questions", models.StatusDraft, models.StatusActive, 0, true},
		{"draft to archived", models.StatusDraft, models.StatusArchived, 0, false},
		{"active to archived", models.StatusActive, models.StatusArchived, 3, false},
		{"archived back to active", models.StatusArchived, models.StatusActive, 3, false},
		{"active to draft is forbidden", models.StatusActive, models.StatusDraft, 3, true},
		{"archived to draft is forbidden", models.StatusArchived, models.StatusDraft, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.current, tt.next, tt.questionCount)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateDeletePermission(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("draft without submissions", func(t *testing.T) {
		if errs := bv.ValidateDeletePermission(false, models.StatusDraft); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("existing submissions block deletion", func(t *testing.T) {
		errs := bv.ValidateDeletePermission(true, models.StatusDraft)
		if !hasFieldError(errs, "submissions") {
			t.Errorf("expected a submissions error, got %v", errs)
		}
	})

	t.Run("active assessments cannot be deleted", func(t *testing.T) {
		errs := bv.ValidateDeletePermission(false, models.StatusActive)
		if !hasFieldError(errs, "status") {
			t.Errorf("expected a status error, got %v", errs)
		}
	})
}

func TestValidatorValidate(t *testing.T) {
	v := New()

	t.Run("valid answer request", func(t *testing.T) {
		req := &SaveAnswerRequest{QuestionID: 1}
		if err := v.Validate(req); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing question id", func(t *testing.T) {
		req := &SaveAnswerRequest{}
		err := v.Validate(req)
		if err == nil {
			t.Fatal("expected a validation error")
		}
		errs, ok := err.(ValidationErrors)
		if !ok {
			t.Fatalf("error type = %T, want ValidationErrors", err)
		}
		if !hasFieldError(errs, "QuestionID") {
			t.Errorf("expected a QuestionID error, got %v", errs)
		}
	})

	t.Run("invalid submission status", func(t *testing.T) {
		bad := models.SubmissionStatus("paused")
		req := &SubmissionUpdateRequest{Status: &bad}
		if err := v.Validate(req); err == nil {
			t.Error("expected a validation error for unknown status")
		}
	})
}
