package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
)

func TestSanitizeQuestion(t *testing.T) {
	question := &models.AssessmentQuestion{
		ID:            1,
		QuestionType:  models.MultipleChoice,
		QuestionText:  "What does GORM stand for?",
		CorrectAnswer: strPtr("unused for choice"),
		Feedback:      strPtr("explanation"),
		Options: []models.QuestionOption{
			{ID: 10, OptionText: "Go ORM", IsCorrect: true},
			{ID: 11, OptionText: "General ORM", IsCorrect: false},
		},
	}

	sanitizeQuestion(question)

	if question.CorrectAnswer != nil {
		t.Error("correct answer should be stripped")
	}
	if question.Feedback != nil {
		t.Error("feedback should be stripped")
	}
	for _, option := range question.Options {
		if option.IsCorrect {
			t.Errorf("option %d still flags the correct answer", option.ID)
		}
	}
	if question.QuestionText == "" {
		t.Error("question text must survive sanitization")
	}
	if len(question.Options) != 2 {
		t.Error("options must survive sanitization")
	}
}

func TestSubmissionDeadline(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	submission := &models.StudentSubmission{StartedAt: started}

	t.Run("no time limit means no deadline", func(t *testing.T) {
		assessment := &models.Assessment{}

		if _, ok := submissionDeadline(submission, assessment); ok {
			t.Error("assessment without a time limit should have no deadline")
		}
	})

	t.Run("deadline includes the grace period", func(t *testing.T) {
		limit := 30
		assessment := &models.Assessment{TimeLimitMinutes: &limit}

		deadline, ok := submissionDeadline(submission, assessment)
		if !ok {
			t.Fatal("expected a deadline")
		}

		want := started.Add(30*time.Minute + timeLimitGrace)
		if !deadline.Equal(want) {
			t.Errorf("deadline = %v, want %v", deadline, want)
		}
	})
}

func TestSubmissionStatusTerminal(t *testing.T) {
	tests := []struct {
		status models.SubmissionStatus
		want   bool
	}{
		{models.SubmissionInProgress, false},
		{models.SubmissionSubmitted, true},
		{models.SubmissionGraded, true},
		{models.SubmissionNeedsReview, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeAssessmentStore struct {
	repositories.AssessmentRepository
	assessment *models.Assessment
}

func (f *fakeAssessmentStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	if f.assessment == nil || f.assessment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.assessment, nil
}

type fakeSubmissionStore struct {
	repositories.SubmissionRepository
	active       *models.StudentSubmission
	attemptCount int64
	created      *models.StudentSubmission
}

func (f *fakeSubmissionStore) GetActiveSubmission(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (*models.StudentSubmission, error) {
	if f.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.active, nil
}

func (f *fakeSubmissionStore) CountByStudent(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (int64, error) {
	return f.attemptCount, nil
}

func (f *fakeSubmissionStore) Create(ctx context.Context, tx *gorm.DB, submission *models.StudentSubmission) error {
	submission.ID = 99
	submission.AttemptNumber = int(f.attemptCount) + 1
	f.created = submission
	return nil
}

type fakeQuestionStore struct {
	repositories.QuestionRepository
}

func (f *fakeQuestionStore) GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.AssessmentQuestion, error) {
	return nil, nil
}

type fakeRepository struct {
	repositories.Repository
	assessments *fakeAssessmentStore
	submissions *fakeSubmissionStore
	questions   *fakeQuestionStore
}

func (f *fakeRepository) Assessment() repositories.AssessmentRepository { return f.assessments }
func (f *fakeRepository) Submission() repositories.SubmissionRepository { return f.submissions }
func (f *fakeRepository) Question() repositories.QuestionRepository    { return f.questions }

func newStartFixture(assessment *models.Assessment, submissions *fakeSubmissionStore) SubmissionService {
	repo := &fakeRepository{
		assessments: &fakeAssessmentStore{assessment: assessment},
		submissions: submissions,
		questions:   &fakeQuestionStore{},
	}
	logger := slog.New(slog.DiscardHandler)
	return NewSubmissionService(repo, nil, logger, validator.New(), nil, nil)
}

func TestStartResumesOpenAttemptAtLimit(t *testing.T) {
	assessment := &models.Assessment{
		ID:              1,
		Status:          models.StatusActive,
		AttemptsAllowed: 1,
		PassingScore:    70,
	}
	open := &models.StudentSubmission{
		ID:            7,
		AssessmentID:  1,
		StudentID:     "student-1",
		Status:        models.SubmissionInProgress,
		AttemptNumber: 1,
		StartedAt:     time.Now().Add(-time.Minute),
	}
	store := &fakeSubmissionStore{active: open, attemptCount: 1}
	svc := newStartFixture(assessment, store)

	resp, err := svc.Start(context.Background(), 1, "student-1")
	if err != nil {
		t.Fatalf("Start() should resume the open attempt, got error: %v", err)
	}
	if resp.ID != open.ID {
		t.Errorf("resumed submission ID = %d, want %d", resp.ID, open.ID)
	}
	if store.created != nil {
		t.Error("resuming must not create a new attempt row")
	}
}

func TestStartAttemptLimitExceeded(t *testing.T) {
	assessment := &models.Assessment{
		ID:              1,
		Status:          models.StatusActive,
		AttemptsAllowed: 1,
		PassingScore:    70,
	}
	store := &fakeSubmissionStore{attemptCount: 1}
	svc := newStartFixture(assessment, store)

	_, err := svc.Start(context.Background(), 1, "student-1")
	if !errors.Is(err, ErrAttemptLimitExceeded) {
		t.Fatalf("Start() error = %v, want ErrAttemptLimitExceeded", err)
	}
	if store.created != nil {
		t.Error("no attempt row should be created past the limit")
	}
}

func TestStartCreatesNewAttempt(t *testing.T) {
	assessment := &models.Assessment{
		ID:              1,
		Status:          models.StatusActive,
		AttemptsAllowed: 3,
		PassingScore:    70,
	}
	store := &fakeSubmissionStore{attemptCount: 1}
	svc := newStartFixture(assessment, store)

	resp, err := svc.Start(context.Background(), 1, "student-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if store.created == nil {
		t.Fatal("expected a new attempt row")
	}
	if store.created.Status != models.SubmissionInProgress {
		t.Errorf("Status = %v, want %v", store.created.Status, models.SubmissionInProgress)
	}
	if !resp.CanSubmit {
		t.Error("a fresh attempt should be submittable")
	}
}
