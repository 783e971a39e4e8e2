package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/events"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"gorm.io/gorm"
)

type gradingService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewGradingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) GradingService {
	return &gradingService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// GradeSubmission grades every answer of a submitted attempt and
// persists answers plus the submission summary in one transaction.
func (s *gradingService) GradeSubmission(ctx context.Context, submissionID uint, userID string) (*SubmissionGradingResult, error) {
	s.logger.Info("Grading submission", "submission_id", submissionID, "user_id", userID)

	var result *SubmissionGradingResult
	var graded *models.StudentSubmission

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		submission, err := txRepo.Submission().GetByIDWithAnswers(ctx, nil, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}

		if err := s.requireGradeAccess(ctx, submission, userID); err != nil {
			return err
		}

		switch submission.Status {
		case models.SubmissionSubmitted:
		case models.SubmissionGraded:
			return ErrSubmissionAlreadyGraded
		default:
			return ErrSubmissionNotSubmitted
		}

		assessment, err := txRepo.Assessment().GetByID(ctx, nil, submission.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to get assessment: %w", err)
		}

		questions, err := txRepo.Question().GetByAssessment(ctx, nil, submission.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}

		now := time.Now()
		result = gradeSubmissionAnswers(submission, questions, assessment.PassingScore, now)

		// Persist graded answers
		gradedAnswers := applyGradingResults(submission.Answers, result.Answers, now)
		if len(gradedAnswers) > 0 {
			if err := txRepo.Answer().SaveGrades(ctx, nil, gradedAnswers); err != nil {
				return fmt.Errorf("failed to save answer grades: %w", err)
			}
		}

		// Persist summary
		fields := map[string]interface{}{
			"status":    result.Status,
			"score":     result.Score,
			"passed":    result.Passed,
			"graded_at": now,
		}
		if err := txRepo.Submission().UpdateFields(ctx, nil, submissionID, fields); err != nil {
			return fmt.Errorf("failed to save submission summary: %w", err)
		}

		submission.Status = result.Status
		submission.Score = &result.Score
		passed := result.Passed
		submission.Passed = &passed
		submission.GradedAt = &now
		graded = submission

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishGradedEvent(ctx, graded, result)

	s.logger.Info("Submission graded",
		"submission_id", submissionID,
		"score", result.Score,
		"passed", result.Passed,
		"status", result.Status)

	return result, nil
}

// GradeAnswer applies a manual grade to an essay or code answer. When
// it was the last ungraded answer of the submission, the summary is
// recomputed and the submission moves to graded.
func (s *gradingService) GradeAnswer(ctx context.Context, answerID uint, req *GradeAnswerRequest, graderID string) (*GradingResult, error) {
	s.logger.Info("Grading answer", "answer_id", answerID, "grader_id", graderID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var result *GradingResult
	var graded *models.StudentSubmission
	var summary *SubmissionGradingResult

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		answer, err := txRepo.Answer().GetByID(ctx, nil, answerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("failed to get answer: %w", err)
		}

		question, err := txRepo.Question().GetByID(ctx, nil, answer.QuestionID)
		if err != nil {
			return fmt.Errorf("failed to get question: %w", err)
		}

		if question.QuestionType.AutoGradeable() {
			return ErrAnswerNotManuallyGraded
		}

		submission, err := txRepo.Submission().GetByID(ctx, nil, answer.SubmissionID)
		if err != nil {
			return fmt.Errorf("failed to get submission: %w", err)
		}

		if err := s.requireTeacherAccess(ctx, submission.AssessmentID, graderID); err != nil {
			return err
		}

		if submission.Status == models.SubmissionInProgress {
			return ErrSubmissionNotSubmitted
		}

		if req.PointsAwarded > float64(question.Points) {
			return NewBusinessRuleError(
				"GRADE_EXCEEDS_QUESTION_POINTS",
				"Awarded points exceed the question's maximum",
				map[string]interface{}{
					"answer_id":  answerID,
					"max_points": question.Points,
				},
			)
		}

		now := time.Now()
		grade := repositories.AnswerGrade{
			ID:            answerID,
			PointsAwarded: req.PointsAwarded,
			Feedback:      req.Feedback,
			GraderID:      graderID,
		}
		if err := txRepo.Answer().UpdateGrade(ctx, nil, grade); err != nil {
			return fmt.Errorf("failed to save grade: %w", err)
		}

		correct := req.PointsAwarded >= float64(question.Points)
		result = &GradingResult{
			AnswerID:      answerID,
			QuestionID:    question.ID,
			QuestionType:  string(question.QuestionType),
			PointsAwarded: req.PointsAwarded,
			MaxPoints:     float64(question.Points),
			IsCorrect:     &correct,
			Feedback:      req.Feedback,
			GradedAt:      now,
		}

		// Last manual grade in: finalize the submission
		ungraded, err := txRepo.Answer().CountUngraded(ctx, nil, submission.ID)
		if err != nil {
			return fmt.Errorf("failed to count ungraded answers: %w", err)
		}
		if ungraded == 0 {
			summary, err = s.recomputeSummary(ctx, txRepo, submission, now)
			if err != nil {
				return err
			}
			graded = submission
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if graded != nil {
		s.publishGradedEvent(ctx, graded, summary)
	}

	s.logger.Info("Answer graded", "answer_id", answerID, "points_awarded", req.PointsAwarded)
	return result, nil
}

func (s *gradingService) GetGradingOverview(ctx context.Context, assessmentID uint, userID string) (*repositories.GradingStats, error) {
	if err := s.requireTeacherAccess(ctx, assessmentID, userID); err != nil {
		return nil, err
	}

	stats, err := s.repo.Answer().GetGradingStats(ctx, s.db, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grading stats: %w", err)
	}

	return stats, nil
}

// ===== PERMISSION HELPERS =====

func (s *gradingService) requireGradeAccess(ctx context.Context, submission *models.StudentSubmission, userID string) error {
	// The student triggers grading through Submit on their own attempt
	if submission.StudentID == userID {
		return nil
	}
	return s.requireTeacherAccess(ctx, submission.AssessmentID, userID)
}

func (s *gradingService) requireTeacherAccess(ctx context.Context, assessmentID uint, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.Role == models.RoleTeacher {
		isOwner, err := s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
		if err != nil {
			return err
		}
		if isOwner {
			return nil
		}
	}

	return NewPermissionError(userID, assessmentID, "assessment", "grade", "not owner or insufficient permissions")
}

// recomputeSummary rebuilds the submission score from stored
// points_awarded values after manual grading completes.
func (s *gradingService) recomputeSummary(ctx context.Context, txRepo repositories.Repository, submission *models.StudentSubmission, now time.Time) (*SubmissionGradingResult, error) {
	assessment, err := txRepo.Assessment().GetByID(ctx, nil, submission.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	questions, err := txRepo.Question().GetByAssessment(ctx, nil, submission.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	answers, err := txRepo.Answer().GetBySubmission(ctx, nil, submission.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	var totalPoints, earnedPoints float64
	for _, question := range questions {
		totalPoints += float64(question.Points)
	}
	for _, answer := range answers {
		if answer.PointsAwarded != nil {
			earnedPoints += *answer.PointsAwarded
		}
	}

	score := computeScore(earnedPoints, totalPoints)
	passed := score >= float64(assessment.PassingScore)

	fields := map[string]interface{}{
		"status":    models.SubmissionGraded,
		"score":     score,
		"passed":    passed,
		"graded_at": now,
	}
	if err := txRepo.Submission().UpdateFields(ctx, nil, submission.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to save submission summary: %w", err)
	}

	submission.Status = models.SubmissionGraded
	submission.Score = &score
	submission.Passed = &passed
	submission.GradedAt = &now

	return &SubmissionGradingResult{
		SubmissionID: submission.ID,
		Status:       models.SubmissionGraded,
		TotalPoints:  totalPoints,
		EarnedPoints: earnedPoints,
		Score:        score,
		Passed:       passed,
		GradedAt:     now,
	}, nil
}

func (s *gradingService) publishGradedEvent(ctx context.Context, submission *models.StudentSubmission, result *SubmissionGradingResult) {
	if s.eventPublisher == nil || submission == nil {
		return
	}

	eventType := events.EventSubmissionGraded
	if result != nil && result.NeedsReview {
		eventType = events.EventSubmissionReview
	}

	event := events.NewEvent(eventType, events.SubmissionEvent{
		SubmissionID:  submission.ID,
		AssessmentID:  submission.AssessmentID,
		StudentID:     submission.StudentID,
		AttemptNumber: submission.AttemptNumber,
		Status:        string(submission.Status),
		Score:         submission.Score,
		Passed:        submission.Passed,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish grading event",
			"error", err,
			"event_type", eventType,
			"submission_id", submission.ID)
	}
}
