package services

import (
	"testing"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func TestBuildNewAssessmentDefaults(t *testing.T) {
	s := &assessmentService{}

	t.Run("empty request uses documented defaults", func(t *testing.T) {
		assessment := s.buildNewAssessment(&CreateAssessmentRequest{}, "teacher-1")

		if assessment.Title != "Untitled Assessment" {
			t.Errorf("Title = %q, want %q", assessment.Title, "Untitled Assessment")
		}
		if assessment.Points != 100 {
			t.Errorf("Points = %d, want 100", assessment.Points)
		}
		if assessment.PassingScore != 70 {
			t.Errorf("PassingScore = %d, want 70", assessment.PassingScore)
		}
		if assessment.AttemptsAllowed != 1 {
			t.Errorf("AttemptsAllowed = %d, want 1", assessment.AttemptsAllowed)
		}
		if assessment.Status != models.StatusDraft {
			t.Errorf("Status = %v, want %v", assessment.Status, models.StatusDraft)
		}
		if !assessment.ShowResults {
			t.Error("ShowResults should default to true")
		}
		if assessment.ShuffleQuestions {
			t.Error("ShuffleQuestions should default to false")
		}
		if assessment.CreatedBy != "teacher-1" {
			t.Errorf("CreatedBy = %q, want teacher-1", assessment.CreatedBy)
		}
	})

	t.Run("provided values override defaults", func(t *testing.T) {
		title := "Midterm"
		req := &CreateAssessmentRequest{
			Title:            &title,
			Points:           intPtr(50),
			PassingScore:     intPtr(80),
			AttemptsAllowed:  intPtr(3),
			ShuffleQuestions: boolPtr(true),
			ShowResults:      boolPtr(false),
		}

		assessment := s.buildNewAssessment(req, "teacher-1")

		if assessment.Title != "Midterm" {
			t.Errorf("Title = %q, want Midterm", assessment.Title)
		}
		if assessment.Points != 50 || assessment.PassingScore != 80 || assessment.AttemptsAllowed != 3 {
			t.Errorf("got %d/%d/%d, want 50/80/3",
				assessment.Points, assessment.PassingScore, assessment.AttemptsAllowed)
		}
		if !assessment.ShuffleQuestions {
			t.Error("ShuffleQuestions override lost")
		}
		if assessment.ShowResults {
			t.Error("ShowResults override lost")
		}
	})

	t.Run("empty title string falls back to default", func(t *testing.T) {
		title := ""
		assessment := s.buildNewAssessment(&CreateAssessmentRequest{Title: &title}, "teacher-1")

		if assessment.Title != "Untitled Assessment" {
			t.Errorf("Title = %q, want the default", assessment.Title)
		}
	})
}

func TestApplyAssessmentUpdatesIsSparse(t *testing.T) {
	s := &assessmentService{}

	assessment := &models.Assessment{
		Title:        "Original",
		Points:       100,
		PassingScore: 70,
		ShowResults:  true,
	}

	s.applyAssessmentUpdates(assessment, &UpdateAssessmentRequest{
		PassingScore: intPtr(85),
	})

	if assessment.PassingScore != 85 {
		t.Errorf("PassingScore = %d, want 85", assessment.PassingScore)
	}
	if assessment.Title != "Original" {
		t.Errorf("Title changed to %q; absent fields must not be touched", assessment.Title)
	}
	if assessment.Points != 100 {
		t.Errorf("Points changed to %d; absent fields must not be touched", assessment.Points)
	}
	if !assessment.ShowResults {
		t.Error("ShowResults changed; absent fields must not be touched")
	}
}

func TestMax(t *testing.T) {
	if max(3, 7) != 7 || max(7, 3) != 7 || max(4, 4) != 4 {
		t.Error("max returned the smaller value")
	}
}
