package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Create inserts the submission with AttemptNumber computed inside the
// statement (max for the student and assessment plus one). If two
// starts race, the unique index rejects one and we retry with a fresh
// number.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.StudentSubmission) error {
	const maxRetries = 3

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		now := time.Now()
		err := s.getDB(tx).WithContext(ctx).Raw(`
			INSERT INTO student_submissions
				(assessment_id, student_id, attempt_number, status, started_at, created_at, updated_at)
			VALUES (?, ?,
				(SELECT COALESCE(MAX(attempt_number), 0) + 1 FROM student_submissions
				 WHERE assessment_id = ? AND student_id = ?),
				?, ?, ?, ?)
			RETURNING id, attempt_number`,
			submission.AssessmentID, submission.StudentID,
			submission.AssessmentID, submission.StudentID,
			submission.Status, submission.StartedAt, now, now,
		).Row().Scan(&submission.ID, &submission.AttemptNumber)
		if err == nil {
			submission.CreatedAt = now
			submission.UpdatedAt = now
			return nil
		}

		lastErr = err
		if !isDuplicateKeyError(err) {
			return fmt.Errorf("failed to create submission: %w", err)
		}
	}

	return fmt.Errorf("failed to create submission after %d attempts: %w", maxRetries, lastErr)
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentSubmission, error) {
	var submission models.StudentSubmission
	if err := s.getDB(tx).WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentSubmission, error) {
	var submission models.StudentSubmission
	err := s.getDB(tx).WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, submission *models.StudentSubmission) error {
	if err := s.getDB(tx).WithContext(ctx).Save(submission).Error; err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update submission fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByAssessment returns submissions of an assessment, newest first
func (s *SubmissionPostgreSQL) GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint, filters repositories.SubmissionFilters) ([]*models.StudentSubmission, int64, error) {
	query := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Where("assessment_id = ?", assessmentID)

	query = s.helpers.ApplySubmissionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var submissions []*models.StudentSubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) ([]*models.StudentSubmission, error) {
	var submissions []*models.StudentSubmission
	err := s.getDB(tx).WithContext(ctx).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		Order("attempt_number DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions by student: %w", err)
	}
	return submissions, nil
}

// GetActiveSubmission returns the student's in-progress submission, if any
func (s *SubmissionPostgreSQL) GetActiveSubmission(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (*models.StudentSubmission, error) {
	var submission models.StudentSubmission
	err := s.getDB(tx).WithContext(ctx).
		Where("assessment_id = ? AND student_id = ? AND status = ?",
			assessmentID, studentID, models.SubmissionInProgress).
		Order("attempt_number DESC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) CountByStudent(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (int64, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		Count(&count).Error
	return count, err
}

// GetExportRows returns the flattened grade-book rows for an assessment
func (s *SubmissionPostgreSQL) GetExportRows(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.SubmissionExportRow, error) {
	var rows []*models.SubmissionExportRow
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Select(`student_submissions.student_id,
			COALESCE(users.full_name, '') AS student_name,
			student_submissions.attempt_number,
			student_submissions.status,
			student_submissions.score,
			student_submissions.passed,
			student_submissions.time_spent_seconds AS time_spent,
			student_submissions.started_at,
			student_submissions.submitted_at,
			student_submissions.graded_at`).
		Joins("LEFT JOIN users ON users.id = student_submissions.student_id").
		Where("student_submissions.assessment_id = ?", assessmentID).
		Order("student_submissions.student_id ASC, student_submissions.attempt_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get export rows: %w", err)
	}
	return rows, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Upsert writes the answer for (submission, question) in one
// statement; a concurrent save of the same answer cannot create a
// second row.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.SubmissionAnswer) error {
	err := a.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer_text", "answer_data", "updated_at",
			}),
		}).
		Create(answer).Error
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SubmissionAnswer, error) {
	var answer models.SubmissionAnswer
	if err := a.getDB(tx).WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) GetBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.SubmissionAnswer, error) {
	var answers []*models.SubmissionAnswer
	err := a.getDB(tx).WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("question_id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers by submission: %w", err)
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) GetBySubmissionAndQuestion(ctx context.Context, tx *gorm.DB, submissionID, questionID uint) (*models.SubmissionAnswer, error) {
	var answer models.SubmissionAnswer
	err := a.getDB(tx).WithContext(ctx).
		Where("submission_id = ? AND question_id = ?", submissionID, questionID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// UpdateGrade applies a manual grade to one answer
func (a *AnswerPostgreSQL) UpdateGrade(ctx context.Context, tx *gorm.DB, grade repositories.AnswerGrade) error {
	now := time.Now()
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.SubmissionAnswer{}).
		Where("id = ?", grade.ID).
		Updates(map[string]interface{}{
			"points_awarded": grade.PointsAwarded,
			"feedback":       grade.Feedback,
			"graded_by":      grade.GraderID,
			"graded_at":      now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update answer grade: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveGrades persists grading results for a batch of answers
func (a *AnswerPostgreSQL) SaveGrades(ctx context.Context, tx *gorm.DB, answers []*models.SubmissionAnswer) error {
	db := a.getDB(tx)
	for _, answer := range answers {
		err := db.WithContext(ctx).
			Model(&models.SubmissionAnswer{}).
			Where("id = ?", answer.ID).
			Updates(map[string]interface{}{
				"is_correct":     answer.IsCorrect,
				"points_awarded": answer.PointsAwarded,
				"feedback":       answer.Feedback,
				"graded_at":      answer.GradedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to save answer grade: %w", err)
		}
	}
	return nil
}

// CountUngraded counts answers still waiting for a manual grade
func (a *AnswerPostgreSQL) CountUngraded(ctx context.Context, tx *gorm.DB, submissionID uint) (int64, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.SubmissionAnswer{}).
		Where("submission_id = ? AND points_awarded IS NULL", submissionID).
		Count(&count).Error
	return count, err
}

// GetGradingStats aggregates answer grading counters for an assessment
func (a *AnswerPostgreSQL) GetGradingStats(ctx context.Context, tx *gorm.DB, assessmentID uint) (*repositories.GradingStats, error) {
	var stats repositories.GradingStats

	row := a.getDB(tx).WithContext(ctx).
		Model(&models.SubmissionAnswer{}).
		Joins("JOIN student_submissions ON student_submissions.id = submission_answers.submission_id").
		Where("student_submissions.assessment_id = ?", assessmentID).
		Select(`COUNT(*),
			SUM(CASE WHEN submission_answers.points_awarded IS NOT NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN submission_answers.points_awarded IS NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN submission_answers.graded_by IS NULL AND submission_answers.points_awarded IS NOT NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN submission_answers.graded_by IS NOT NULL THEN 1 ELSE 0 END),
			COALESCE(AVG(submission_answers.points_awarded), 0)`).
		Row()
	if err := row.Scan(&stats.TotalAnswers, &stats.GradedAnswers, &stats.PendingAnswers,
		&stats.AutoGraded, &stats.ManualGraded, &stats.AverageScore); err != nil {
		return nil, fmt.Errorf("failed to scan grading stats: %w", err)
	}

	return &stats, nil
}
