package models

import (
	"testing"
	"time"
)

func TestAssessmentIsAvailableAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name       string
		assessment Assessment
		want       bool
	}{
		{
			name:       "active without window",
			assessment: Assessment{Status: StatusActive},
			want:       true,
		},
		{
			name:       "draft is never available",
			assessment: Assessment{Status: StatusDraft},
			want:       false,
		},
		{
			name:       "archived is never available",
			assessment: Assessment{Status: StatusArchived},
			want:       false,
		},
		{
			name:       "inside the window",
			assessment: Assessment{Status: StatusActive, AvailableFrom: &before, AvailableUntil: &after},
			want:       true,
		},
		{
			name:       "before the window opens",
			assessment: Assessment{Status: StatusActive, AvailableFrom: &after},
			want:       false,
		},
		{
			name:       "after the window closes",
			assessment: Assessment{Status: StatusActive, AvailableUntil: &before},
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assessment.IsAvailableAt(now); got != tt.want {
				t.Errorf("IsAvailableAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuestionTypeAutoGradeable(t *testing.T) {
	tests := []struct {
		qType QuestionType
		want  bool
	}{
		{MultipleChoice, true},
		{TrueFalse, true},
		{Matching, true},
		{FillBlank, true},
		{Essay, false},
		{Code, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.qType), func(t *testing.T) {
			if got := tt.qType.AutoGradeable(); got != tt.want {
				t.Errorf("AutoGradeable() = %v, want %v", got, tt.want)
			}
		})
	}
}
