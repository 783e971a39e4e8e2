package repositories

import (
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	CourseID         *uint                    `json:"course_id"`
	ModuleID         *uint                    `json:"module_id"`
	AssessmentTypeID *uint                    `json:"assessment_type_id"`
	Status           *models.AssessmentStatus `json:"status"`
	CreatedBy        *string                  `json:"created_by"`
	Search           *string                  `json:"search"`
	DateFrom         *time.Time               `json:"date_from"`
	DateTo           *time.Time               `json:"date_to"`
	Limit            int                      `json:"limit"`
	Offset           int                      `json:"offset"`
	SortBy           string                   `json:"sort_by"`    // "created_at", "title", "status"
	SortOrder        string                   `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	Status    *models.SubmissionStatus `json:"status"`
	StudentID *string                  `json:"student_id"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`
	SortOrder string                   `json:"sort_order"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

type AnswerGrade struct {
	ID            uint    `json:"answer_id"`
	PointsAwarded float64 `json:"points_awarded"`
	Feedback      *string `json:"feedback"`
	GraderID      string  `json:"grader_id"`
}

// ===== SHARED STATISTICS STRUCTS =====

type AssessmentStats struct {
	TotalSubmissions  int     `json:"total_submissions"`
	GradedSubmissions int     `json:"graded_submissions"`
	PendingReview     int     `json:"pending_review"`
	AverageScore      float64 `json:"average_score"`
	PassRate          float64 `json:"pass_rate"`
	QuestionCount     int     `json:"question_count"`
	TotalPoints       int     `json:"total_points"`
}

type CreatorStats struct {
	TotalAssessments  int `json:"total_assessments"`
	ActiveAssessments int `json:"active_assessments"`
	DraftAssessments  int `json:"draft_assessments"`
	TotalSubmissions  int `json:"total_submissions"`
}

type GradingStats struct {
	TotalAnswers   int     `json:"total_answers"`
	GradedAnswers  int     `json:"graded_answers"`
	PendingAnswers int     `json:"pending_answers"`
	AutoGraded     int     `json:"auto_graded"`
	ManualGraded   int     `json:"manual_graded"`
	AverageScore   float64 `json:"average_score"`
}
