package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionInProgress  SubmissionStatus = "in_progress"
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionGraded      SubmissionStatus = "graded"
	SubmissionNeedsReview SubmissionStatus = "needs_review"
)

// Terminal reports whether the submission can no longer accept answers.
func (s SubmissionStatus) Terminal() bool {
	return s != SubmissionInProgress
}

// StudentSubmission is one attempt by a student at an assessment.
// (assessment_id, student_id, attempt_number) is unique; attempt
// numbers are assigned by the database at insert time.
type StudentSubmission struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	AssessmentID  uint             `json:"assessment_id" gorm:"not null;uniqueIndex:idx_submissions_attempt,priority:1"`
	StudentID     string           `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_submissions_attempt,priority:2"`
	AttemptNumber int              `json:"attempt_number" gorm:"not null;default:1;uniqueIndex:idx_submissions_attempt,priority:3"`
	Status        SubmissionStatus `json:"status" gorm:"not null;size:20;default:in_progress;index"`

	Score            *float64 `json:"score"`
	Passed           *bool    `json:"passed"`
	TimeSpentSeconds *int     `json:"time_spent_seconds"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assessment *Assessment        `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Answers    []SubmissionAnswer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

// SubmissionAnswer holds a student's answer to one question. One row
// per (submission, question); saves upsert against that key.
type SubmissionAnswer struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	SubmissionID uint `json:"submission_id" gorm:"not null;uniqueIndex:idx_answers_submission_question,priority:1"`
	QuestionID   uint `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_submission_question,priority:2"`

	// AnswerText carries the graded value: the chosen option ID for
	// choice questions, the literal response for text questions.
	AnswerText *string        `json:"answer_text" gorm:"type:text"`
	AnswerData datatypes.JSON `json:"answer_data,omitempty" gorm:"type:jsonb"`

	IsCorrect     *bool    `json:"is_correct"`
	PointsAwarded *float64 `json:"points_awarded"`
	Feedback      *string  `json:"feedback,omitempty" gorm:"type:text"`

	GradedBy  *string    `json:"graded_by,omitempty" gorm:"size:255"`
	GradedAt  *time.Time `json:"graded_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Question *AssessmentQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (StudentSubmission) TableName() string {
	return "student_submissions"
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}
