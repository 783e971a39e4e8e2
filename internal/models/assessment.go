package models

import (
	"time"

	"gorm.io/gorm"
)

type AssessmentStatus string

const (
	StatusDraft    AssessmentStatus = "draft"
	StatusActive   AssessmentStatus = "active"
	StatusArchived AssessmentStatus = "archived"
)

// AssessmentType is reference data describing the kind of assessment
// (quiz, exam, assignment, project). Rows are seeded at startup.
type AssessmentType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	Description *string   `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	Icon        *string   `json:"icon" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Assessment struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	AssessmentTypeID *uint            `json:"assessment_type_id" gorm:"index"`
	CourseID         *uint            `json:"course_id" gorm:"index"`
	ModuleID         *uint            `json:"module_id" gorm:"index"`
	Title            string           `json:"title" gorm:"not null;size:200;index;default:Untitled Assessment" validate:"required,min=1,max=200"`
	Description      *string          `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Instructions     *string          `json:"instructions" gorm:"type:text" validate:"omitempty,max=5000"`
	Status           AssessmentStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft active archived"`
	Points           int              `json:"points" gorm:"not null;default:100" validate:"min=0,max=1000"`
	PassingScore     int              `json:"passing_score" gorm:"not null;default:70" validate:"min=0,max=100"`
	AttemptsAllowed  int              `json:"attempts_allowed" gorm:"default:1" validate:"min=1,max=10"`
	TimeLimitMinutes *int             `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	ShuffleQuestions bool             `json:"shuffle_questions" gorm:"default:false"`
	ShowResults      bool             `json:"show_results" gorm:"default:true"`
	AvailableFrom    *time.Time       `json:"available_from"`
	AvailableUntil   *time.Time       `json:"available_until"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	AssessmentType *AssessmentType      `json:"assessment_type,omitempty" gorm:"foreignKey:AssessmentTypeID"`
	Questions      []AssessmentQuestion `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
	Submissions    []StudentSubmission  `json:"-" gorm:"foreignKey:AssessmentID"`

	// Computed fields (not stored)
	QuestionsCount   int `json:"questions_count" gorm:"-"`
	SubmissionsCount int `json:"submissions_count" gorm:"-"`
}

// IsAvailableAt reports whether the assessment accepts new submissions
// at the given time, based on status and availability window.
func (a *Assessment) IsAvailableAt(t time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	if a.AvailableFrom != nil && t.Before(*a.AvailableFrom) {
		return false
	}
	if a.AvailableUntil != nil && t.After(*a.AvailableUntil) {
		return false
	}
	return true
}

func (AssessmentType) TableName() string {
	return "assessment_types"
}

func (Assessment) TableName() string {
	return "assessments"
}
