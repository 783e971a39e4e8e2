package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/events"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Late saves are tolerated this long past the time limit to absorb
// clock skew and network latency.
const timeLimitGrace = 30 * time.Second

type submissionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	grading        GradingService
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, grading GradingService) SubmissionService {
	return &submissionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		grading:        grading,
	}
}

// ===== LIFECYCLE =====

func (s *submissionService) Start(ctx context.Context, assessmentID uint, studentID string) (*SubmissionResponse, error) {
	s.logger.Info("Starting submission", "assessment_id", assessmentID, "student_id", studentID)

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if !assessment.IsAvailableAt(time.Now()) {
		return nil, ErrAssessmentNotAvailable
	}

	// Resume an open attempt instead of burning another one. Resuming
	// stays possible even when the attempt limit is already reached.
	if active, err := s.repo.Submission().GetActiveSubmission(ctx, s.db, assessmentID, studentID); err == nil {
		return s.buildSubmissionResponse(ctx, active, assessment, studentID)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active submission: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateSubmissionStart(assessment); len(errs) > 0 {
		return nil, errs
	}

	attemptCount, err := s.repo.Submission().CountByStudent(ctx, s.db, assessmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	// The limit gates the creation of a new attempt row only.
	if assessment.AttemptsAllowed > 0 && int(attemptCount) >= assessment.AttemptsAllowed {
		return nil, ErrAttemptLimitExceeded
	}

	submission := &models.StudentSubmission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Status:       models.SubmissionInProgress,
		StartedAt:    time.Now(),
	}

	// Attempt number is assigned inside the insert; a duplicate from a
	// concurrent start is retried by the repository.
	if err := s.repo.Submission().Create(ctx, s.db, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.publishSubmissionEvent(ctx, events.EventSubmissionStarted, submission)

	s.logger.Info("Submission started",
		"submission_id", submission.ID,
		"assessment_id", assessmentID,
		"attempt_number", submission.AttemptNumber)

	return s.buildSubmissionResponse(ctx, submission, assessment, studentID)
}

func (s *submissionService) Update(ctx context.Context, id uint, req *UpdateSubmissionRequest, userID string) (*SubmissionResponse, error) {
	s.logger.Info("Updating submission", "submission_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	submission, err := s.getOwnedSubmission(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if submission.Status == models.SubmissionGraded {
		return nil, ErrSubmissionAlreadyGraded
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		fields["status"] = *req.Status
		if *req.Status == models.SubmissionSubmitted && submission.SubmittedAt == nil && req.SubmittedAt == nil {
			fields["submitted_at"] = time.Now()
		}
	}
	if req.TimeSpentSeconds != nil {
		fields["time_spent_seconds"] = *req.TimeSpentSeconds
	}
	if req.SubmittedAt != nil {
		fields["submitted_at"] = *req.SubmittedAt
	}

	if len(fields) > 0 {
		if err := s.repo.Submission().UpdateFields(ctx, s.db, id, fields); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSubmissionNotFound
			}
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}
	}

	return s.GetByID(ctx, id, userID)
}

func (s *submissionService) SaveAnswer(ctx context.Context, submissionID uint, req *SaveAnswerRequest, studentID string) (*models.SubmissionAnswer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	submission, err := s.getOwnedSubmission(ctx, submissionID, studentID)
	if err != nil {
		return nil, err
	}

	if submission.Status.Terminal() {
		return nil, ErrSubmissionNotActive
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, submission.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if deadline, ok := submissionDeadline(submission, assessment); ok && time.Now().After(deadline) {
		return nil, NewBusinessRuleError(
			"SUBMISSION_TIME_EXCEEDED",
			"Time limit for this submission has passed",
			map[string]interface{}{
				"submission_id": submissionID,
				"deadline":      deadline,
			},
		)
	}

	question, err := s.repo.Question().GetByID(ctx, s.db, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.AssessmentID != submission.AssessmentID {
		return nil, ErrQuestionNotInAssessment
	}

	answer := &models.SubmissionAnswer{
		SubmissionID: submissionID,
		QuestionID:   req.QuestionID,
		AnswerText:   req.AnswerText,
	}
	if len(req.AnswerData) > 0 {
		answer.AnswerData = datatypes.JSON(req.AnswerData)
	}

	// Single-statement upsert keyed on (submission_id, question_id)
	if err := s.repo.Answer().Upsert(ctx, s.db, answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	saved, err := s.repo.Answer().GetBySubmissionAndQuestion(ctx, s.db, submissionID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload answer: %w", err)
	}

	return saved, nil
}

func (s *submissionService) Submit(ctx context.Context, id uint, studentID string) (*SubmissionGradingResult, error) {
	s.logger.Info("Submitting submission", "submission_id", id, "student_id", studentID)

	submission, err := s.getOwnedSubmission(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	if submission.Status.Terminal() {
		return nil, ErrSubmissionNotActive
	}

	now := time.Now()
	fields := map[string]interface{}{
		"status":       models.SubmissionSubmitted,
		"submitted_at": now,
	}
	if submission.TimeSpentSeconds == nil {
		fields["time_spent_seconds"] = int(now.Sub(submission.StartedAt).Seconds())
	}

	if err := s.repo.Submission().UpdateFields(ctx, s.db, id, fields); err != nil {
		return nil, fmt.Errorf("failed to mark submission submitted: %w", err)
	}

	submission.Status = models.SubmissionSubmitted
	submission.SubmittedAt = &now
	s.publishSubmissionEvent(ctx, events.EventSubmissionSubmitted, submission)

	result, err := s.grading.GradeSubmission(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission submitted and graded",
		"submission_id", id,
		"score", result.Score,
		"status", result.Status)

	return result, nil
}

// ===== GET OPERATIONS =====

func (s *submissionService) GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if err := s.requireReadAccess(ctx, submission, userID); err != nil {
		return nil, err
	}

	return &SubmissionResponse{
		StudentSubmission: submission,
		CanSubmit:         submission.Status == models.SubmissionInProgress && submission.StudentID == userID,
	}, nil
}

func (s *submissionService) GetByIDWithAnswers(ctx context.Context, id uint, userID string) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByIDWithAnswers(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if err := s.requireReadAccess(ctx, submission, userID); err != nil {
		return nil, err
	}

	// Students never see grading detail on an open attempt
	if submission.StudentID == userID && submission.Status == models.SubmissionInProgress {
		for i := range submission.Answers {
			submission.Answers[i].IsCorrect = nil
			submission.Answers[i].PointsAwarded = nil
			submission.Answers[i].Feedback = nil
			if submission.Answers[i].Question != nil {
				sanitizeQuestion(submission.Answers[i].Question)
			}
		}
	}

	return &SubmissionResponse{
		StudentSubmission: submission,
		CanSubmit:         submission.Status == models.SubmissionInProgress && submission.StudentID == userID,
	}, nil
}

func (s *submissionService) GetByAssessment(ctx context.Context, assessmentID uint, filters repositories.SubmissionFilters, userID string) (*SubmissionListResponse, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	switch user.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		isOwner, err := s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
		if err != nil {
			return nil, err
		}
		if !isOwner {
			return nil, NewPermissionError(userID, assessmentID, "assessment", "list_submissions", "not owner")
		}
	default:
		// Students see only their own rows
		filters.StudentID = &userID
	}

	submissions, total, err := s.repo.Submission().GetByAssessment(ctx, s.db, assessmentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	response := &SubmissionListResponse{
		Submissions: make([]*SubmissionResponse, len(submissions)),
		Total:       total,
		Page:        (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:        filters.Limit,
	}
	for i, submission := range submissions {
		response.Submissions[i] = &SubmissionResponse{
			StudentSubmission: submission,
			CanSubmit:         submission.Status == models.SubmissionInProgress && submission.StudentID == userID,
		}
	}

	return response, nil
}

func (s *submissionService) GetMySubmissions(ctx context.Context, assessmentID uint, studentID string) ([]*SubmissionResponse, error) {
	submissions, err := s.repo.Submission().GetByStudent(ctx, s.db, assessmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	responses := make([]*SubmissionResponse, len(submissions))
	for i, submission := range submissions {
		responses[i] = &SubmissionResponse{
			StudentSubmission: submission,
			CanSubmit:         submission.Status == models.SubmissionInProgress,
		}
	}

	return responses, nil
}

// ===== HELPERS =====

func (s *submissionService) getOwnedSubmission(ctx context.Context, id uint, studentID string) (*models.StudentSubmission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.StudentID != studentID {
		return nil, NewPermissionError(studentID, id, "submission", "modify", "not the submission owner")
	}

	return submission, nil
}

func (s *submissionService) requireReadAccess(ctx context.Context, submission *models.StudentSubmission, userID string) error {
	if submission.StudentID == userID {
		return nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.Role == models.RoleTeacher {
		isOwner, err := s.repo.Assessment().IsOwner(ctx, s.db, submission.AssessmentID, userID)
		if err != nil {
			return err
		}
		if isOwner {
			return nil
		}
	}

	return NewPermissionError(userID, submission.ID, "submission", "read", "not owner, grader, or admin")
}

// buildSubmissionResponse attaches the question payload a student sees
// while taking the assessment.
func (s *submissionService) buildSubmissionResponse(ctx context.Context, submission *models.StudentSubmission, assessment *models.Assessment, studentID string) (*SubmissionResponse, error) {
	questions, err := s.repo.Question().GetByAssessment(ctx, s.db, submission.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	sanitized := make([]*models.AssessmentQuestion, len(questions))
	for i, question := range questions {
		q := *question
		sanitizeQuestion(&q)
		sanitized[i] = &q
	}

	if assessment.ShuffleQuestions {
		rand.Shuffle(len(sanitized), func(i, j int) {
			sanitized[i], sanitized[j] = sanitized[j], sanitized[i]
		})
	}

	return &SubmissionResponse{
		StudentSubmission: submission,
		CanSubmit:         submission.Status == models.SubmissionInProgress,
		Questions:         sanitized,
	}, nil
}

// sanitizeQuestion strips everything that would reveal the answer key
func sanitizeQuestion(question *models.AssessmentQuestion) {
	question.CorrectAnswer = nil
	question.Feedback = nil
	for i := range question.Options {
		question.Options[i].IsCorrect = false
	}
}

func submissionDeadline(submission *models.StudentSubmission, assessment *models.Assessment) (time.Time, bool) {
	if assessment.TimeLimitMinutes == nil {
		return time.Time{}, false
	}
	limit := time.Duration(*assessment.TimeLimitMinutes) * time.Minute
	return submission.StartedAt.Add(limit + timeLimitGrace), true
}

func (s *submissionService) publishSubmissionEvent(ctx context.Context, eventType string, submission *models.StudentSubmission) {
	if s.eventPublisher == nil {
		return
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
		s.logger.Error("Failed to publish submission event",
			"error", err,
			"event_type", eventType,
			"submission_id", submission.ID)
	}
}
