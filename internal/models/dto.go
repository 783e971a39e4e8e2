package models

import (
	"time"
)

// ===== PAGINATION =====

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// ===== STATISTICS DTOs =====

type ScoreBucket struct {
	Range string `json:"range"` // "0-10", "11-20", etc.
	Count int    `json:"count"`
}

type AssessmentStats struct {
	TotalSubmissions  int           `json:"total_submissions"`
	GradedSubmissions int           `json:"graded_submissions"`
	PendingReview     int           `json:"pending_review"`
	AverageScore      float64       `json:"average_score"`
	PassRate          float64       `json:"pass_rate"`
	ScoreDistribution []ScoreBucket `json:"score_distribution"`
}

type QuestionStatsItem struct {
	QuestionID   uint    `json:"question_id"`
	QuestionText string  `json:"question_text"`
	CorrectRate  float64 `json:"correct_rate"`
	AverageScore float64 `json:"average_score"`
}

// ===== GRADE-BOOK EXPORT =====

type SubmissionExportRow struct {
	StudentID     string     `json:"student_id"`
	StudentName   string     `json:"student_name"`
	AttemptNumber int        `json:"attempt_number"`
	Status        string     `json:"status"`
	Score         *float64   `json:"score"`
	Passed        *bool      `json:"passed"`
	TimeSpent     *int       `json:"time_spent"`
	StartedAt     time.Time  `json:"started_at"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	GradedAt      *time.Time `json:"graded_at"`
}

// ===== STATUS MANAGEMENT =====

type ChangeStatusRequest struct {
	Status AssessmentStatus `json:"status" validate:"required,oneof=draft active archived"`
	Reason *string          `json:"reason" validate:"omitempty,max=500"`
}

type StatusChangeResponse struct {
	OldStatus AssessmentStatus `json:"old_status"`
	NewStatus AssessmentStatus `json:"new_status"`
	ChangedAt time.Time        `json:"changed_at"`
	ChangedBy string           `json:"changed_by"`
	Reason    *string          `json:"reason"`
}
