package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
	Matching       QuestionType = "matching"
	FillBlank      QuestionType = "fill_blank"
	Code           QuestionType = "code"
)

// AutoGradeable reports whether answers of this type can be scored
// without a grader.
func (t QuestionType) AutoGradeable() bool {
	switch t {
	case MultipleChoice, TrueFalse, Matching, FillBlank:
		return true
	default:
		return false
	}
}

type AssessmentQuestion struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	AssessmentID uint         `json:"assessment_id" gorm:"not null;index:idx_assessment_questions_order"`
	QuestionText string       `json:"question_text" gorm:"not null;type:text" validate:"required,min=1,max=5000"`
	QuestionType QuestionType `json:"question_type" gorm:"not null;size:50;default:multiple_choice" validate:"omitempty,oneof=multiple_choice true_false essay matching fill_blank code"`
	Points       int          `json:"points" gorm:"not null;default:10" validate:"min=0,max=1000"`
	Order        int          `json:"order" gorm:"column:order;not null;default:1;index:idx_assessment_questions_order"`

	// CorrectAnswer is compared verbatim for matching and fill_blank
	// questions. Choice questions use the Options relation instead.
	CorrectAnswer *string        `json:"correct_answer,omitempty" gorm:"type:text"`
	Feedback      *string        `json:"feedback,omitempty" gorm:"type:text" validate:"omitempty,max=2000"`
	Settings      datatypes.JSON `json:"settings,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Options []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index:idx_question_options_order"`
	OptionText string `json:"option_text" gorm:"not null;type:text;default:New Option" validate:"required,min=1,max=2000"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
	Order      int    `json:"order" gorm:"column:order;not null;default:1;index:idx_question_options_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CodeSettings is the Settings payload for code questions.
type CodeSettings struct {
	Language      string `json:"language"`
	StarterCode   string `json:"starter_code,omitempty"`
	TestCasesNote string `json:"test_cases_note,omitempty"`
}

// MatchingSettings is the Settings payload for matching questions.
// Pairs describe the prompt/match columns shown to the student; the
// graded value still lives in CorrectAnswer.
type MatchingSettings struct {
	Pairs []MatchingPair `json:"pairs"`
}

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

func (QuestionOption) TableName() string {
	return "question_options"
}
