package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func choiceQuestion(id uint, qType models.QuestionType, points int, correctOptionID uint) *models.AssessmentQuestion {
	return &models.AssessmentQuestion{
		ID:           id,
		QuestionType: qType,
		Points:       points,
		Options: []models.QuestionOption{
			{ID: correctOptionID, QuestionID: id, OptionText: "Right", IsCorrect: true, Order: 1},
			{ID: correctOptionID + 1, QuestionID: id, OptionText: "Wrong", IsCorrect: false, Order: 2},
		},
	}
}

func textQuestion(id uint, qType models.QuestionType, points int, correctAnswer string) *models.AssessmentQuestion {
	return &models.AssessmentQuestion{
		ID:            id,
		QuestionType:  qType,
		Points:        points,
		CorrectAnswer: strPtr(correctAnswer),
	}
}

func answerFor(id, questionID uint, text string) models.SubmissionAnswer {
	return models.SubmissionAnswer{
		ID:           id,
		SubmissionID: 1,
		QuestionID:   questionID,
		AnswerText:   strPtr(text),
	}
}

func TestIsAnswerCorrect(t *testing.T) {
	mc := choiceQuestion(1, models.MultipleChoice, 10, 100)
	tf := choiceQuestion(2, models.TrueFalse, 10, 200)
	fill := textQuestion(3, models.FillBlank, 10, "photosynthesis")
	matching := textQuestion(4, models.Matching, 10, "a-1,b-2")

	tests := []struct {
		name     string
		question *models.AssessmentQuestion
		answer   *models.SubmissionAnswer
		want     bool
	}{
		{
			name:     "multiple choice correct option id",
			question: mc,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("100")},
			want:     true,
		},
		{
			name:     "multiple choice wrong option id",
			question: mc,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("101")},
			want:     false,
		},
		{
			name:     "multiple choice option text is not accepted",
			question: mc,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("Right")},
			want:     false,
		},
		{
			name:     "true false correct option id",
			question: tf,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("200")},
			want:     true,
		},
		{
			name:     "fill blank exact match",
			question: fill,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("photosynthesis")},
			want:     true,
		},
		{
			name:     "fill blank is case sensitive",
			question: fill,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("Photosynthesis")},
			want:     false,
		},
		{
			name:     "matching exact match",
			question: matching,
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("a-1,b-2")},
			want:     true,
		},
		{
			name:     "nil answer",
			question: mc,
			answer:   nil,
			want:     false,
		},
		{
			name:     "nil answer text",
			question: mc,
			answer:   &models.SubmissionAnswer{},
			want:     false,
		},
		{
			name: "choice question without a correct option",
			question: &models.AssessmentQuestion{
				ID:           9,
				QuestionType: models.MultipleChoice,
				Points:       10,
				Options: []models.QuestionOption{
					{ID: 900, OptionText: "A"},
					{ID: 901, OptionText: "B"},
				},
			},
			answer: &models.SubmissionAnswer{AnswerText: strPtr("900")},
			want:   false,
		},
		{
			name:     "fill blank without stored correct answer",
			question: &models.AssessmentQuestion{ID: 10, QuestionType: models.FillBlank, Points: 10},
			answer:   &models.SubmissionAnswer{AnswerText: strPtr("anything")},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAnswerCorrect(tt.question, tt.answer); got != tt.want {
				t.Errorf("isAnswerCorrect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeAnswer(t *testing.T) {
	now := time.Now()

	t.Run("correct choice answer earns full points", func(t *testing.T) {
		question := choiceQuestion(1, models.MultipleChoice, 10, 100)
		answer := answerFor(11, 1, "100")

		result := gradeAnswer(question, &answer, now)

		if result.PointsAwarded != 10 {
			t.Errorf("PointsAwarded = %v, want 10", result.PointsAwarded)
		}
		if result.IsCorrect == nil || !*result.IsCorrect {
			t.Error("expected IsCorrect to be true")
		}
		if result.NeedsReview {
			t.Error("auto-graded answer should not need review")
		}
	})

	t.Run("wrong choice answer earns zero", func(t *testing.T) {
		question := choiceQuestion(1, models.MultipleChoice, 10, 100)
		answer := answerFor(11, 1, "101")

		result := gradeAnswer(question, &answer, now)

		if result.PointsAwarded != 0 {
			t.Errorf("PointsAwarded = %v, want 0", result.PointsAwarded)
		}
		if result.IsCorrect == nil || *result.IsCorrect {
			t.Error("expected IsCorrect to be false")
		}
	})

	t.Run("essay answer needs review", func(t *testing.T) {
		question := &models.AssessmentQuestion{ID: 2, QuestionType: models.Essay, Points: 20}
		answer := answerFor(12, 2, "long form response")

		result := gradeAnswer(question, &answer, now)

		if !result.NeedsReview {
			t.Error("essay answer should need review")
		}
		if result.IsCorrect != nil {
			t.Error("essay answer should have no auto correctness")
		}
		if result.PointsAwarded != 0 {
			t.Errorf("PointsAwarded = %v, want 0 before manual grading", result.PointsAwarded)
		}
	})

	t.Run("unanswered essay still needs review", func(t *testing.T) {
		question := &models.AssessmentQuestion{ID: 2, QuestionType: models.Essay, Points: 20}

		result := gradeAnswer(question, nil, now)

		if !result.NeedsReview {
			t.Error("unanswered essay should still need review")
		}
		if result.PointsAwarded != 0 {
			t.Errorf("PointsAwarded = %v, want 0", result.PointsAwarded)
		}
		if result.IsCorrect != nil {
			t.Error("unanswered essay should have no auto correctness")
		}
	})

	t.Run("unanswered auto question is wrong", func(t *testing.T) {
		question := choiceQuestion(1, models.TrueFalse, 5, 100)

		result := gradeAnswer(question, nil, now)

		if result.IsCorrect == nil || *result.IsCorrect {
			t.Error("unanswered question should grade as incorrect")
		}
		if result.PointsAwarded != 0 {
			t.Errorf("PointsAwarded = %v, want 0", result.PointsAwarded)
		}
	})
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name   string
		earned float64
		total  float64
		want   float64
	}{
		{"perfect", 30, 30, 100},
		{"zero earned", 0, 30, 0},
		{"no points in assessment", 0, 0, 0},
		{"half", 15, 30, 50},
		{"two thirds rounds up", 20, 30, 67},
		{"one third rounds down", 10, 30, 33},
		{"boundary round half up", 25, 40, 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeScore(tt.earned, tt.total); got != tt.want {
				t.Errorf("computeScore(%v, %v) = %v, want %v", tt.earned, tt.total, got, tt.want)
			}
		})
	}
}

func TestGradeSubmissionAnswers(t *testing.T) {
	now := time.Now()

	mc := choiceQuestion(1, models.MultipleChoice, 10, 100)
	tf := choiceQuestion(2, models.TrueFalse, 10, 200)
	fill := textQuestion(3, models.FillBlank, 10, "gorm")

	t.Run("all correct passes with full score", func(t *testing.T) {
		submission := &models.StudentSubmission{
			ID: 1,
			Answers: []models.SubmissionAnswer{
				answerFor(11, 1, "100"),
				answerFor(12, 2, "200"),
				answerFor(13, 3, "gorm"),
			},
		}

		result := gradeSubmissionAnswers(submission, []*models.AssessmentQuestion{mc, tf, fill}, 70, now)

		if result.Score != 100 {
			t.Errorf("Score = %v, want 100", result.Score)
		}
		if !result.Passed {
			t.Error("expected submission to pass")
		}
		if result.Status != models.SubmissionGraded {
			t.Errorf("Status = %v, want %v", result.Status, models.SubmissionGraded)
		}
		if result.NeedsReview {
			t.Error("fully auto-graded submission should not need review")
		}
		if result.TotalPoints != 30 || result.EarnedPoints != 30 {
			t.Errorf("points = %v/%v, want 30/30", result.EarnedPoints, result.TotalPoints)
		}
	})

	t.Run("all wrong scores zero and fails", func(t *testing.T) {
		submission := &models.StudentSubmission{
			ID: 1,
			Answers: []models.SubmissionAnswer{
				answerFor(11, 1, "101"),
				answerFor(12, 2, "201"),
				answerFor(13, 3, "sqlx"),
			},
		}

		result := gradeSubmissionAnswers(submission, []*models.AssessmentQuestion{mc, tf, fill}, 70, now)

		if result.Score != 0 {
			t.Errorf("Score = %v, want 0", result.Score)
		}
		if result.Passed {
			t.Error("expected submission to fail")
		}
	})

	t.Run("score exactly at passing score passes", func(t *testing.T) {
		// 20 of 30 points rounds to 67; use 2 of 3 equal questions
		// with a passing score of 67 to hit the boundary.
		submission := &models.StudentSubmission{
			ID: 1,
			Answers: []models.SubmissionAnswer{
				answerFor(11, 1, "100"),
				answerFor(12, 2, "200"),
				answerFor(13, 3, "wrong"),
			},
		}

		result := gradeSubmissionAnswers(submission, []*models.AssessmentQuestion{mc, tf, fill}, 67, now)

		if result.Score != 67 {
			t.Errorf("Score = %v, want 67", result.Score)
		}
		if !result.Passed {
			t.Error("score equal to passing score should pass")
		}
	})

	t.Run("essay flags needs review but auto portion is scored", func(t *testing.T) {
		essay := &models.AssessmentQuestion{ID: 4, QuestionType: models.Essay, Points: 10}
		submission := &models.StudentSubmission{
			ID: 1,
			Answers: []models.SubmissionAnswer{
				answerFor(11, 1, "100"),
				answerFor(14, 4, "my essay"),
			},
		}

		result := gradeSubmissionAnswers(submission, []*models.AssessmentQuestion{mc, essay}, 70, now)

		if !result.NeedsReview {
			t.Error("submission with an essay answer should need review")
		}
		if result.Status != models.SubmissionNeedsReview {
			t.Errorf("Status = %v, want %v", result.Status, models.SubmissionNeedsReview)
		}
		if result.EarnedPoints != 10 {
			t.Errorf("EarnedPoints = %v, want 10 from the auto-graded part", result.EarnedPoints)
		}
		if result.TotalPoints != 20 {
			t.Errorf("TotalPoints = %v, want 20 including the essay", result.TotalPoints)
		}
	})

	t.Run("unanswered essay still flags needs review", func(t *testing.T) {
		essay := &models.AssessmentQuestion{ID: 4, QuestionType: models.Essay, Points: 10}
		submission := &models.StudentSubmission{
			ID: 1,
			Answers: []models.SubmissionAnswer{
				answerFor(11, 1, "100"),
			},
		}

		result := gradeSubmissionAnswers(submission, []*models.AssessmentQuestion{mc, essay}, 70, now)

		if result.Status != models.SubmissionNeedsReview {
			t.Errorf("Status = %v, want %v", result.Status, models.SubmissionNeedsReview)
		}
		if !result.NeedsReview {
			t.Error("submission with an unanswered essay should need review")
		}
		if result.TotalPoints != 20 || result.EarnedPoints != 10 {
			t.Errorf("points = %v/%v, want 10/20", result.EarnedPoints, result.TotalPoints)
		}
		if result.Score != 50 {
			t.Errorf("Score = %v, want 50", result.Score)
		}
	})

	t.Run("assessment without questions scores zero", func(t *testing.T) {
		submission := &models.StudentSubmission{ID: 1}

		result := gradeSubmissionAnswers(submission, nil, 70, now)

		if result.Score != 0 {
			t.Errorf("Score = %v, want 0", result.Score)
		}
		if result.Passed {
			t.Error("empty assessment should not pass with passing score above zero")
		}
	})
}

func TestApplyGradingResults(t *testing.T) {
	now := time.Now()

	answers := []models.SubmissionAnswer{
		{ID: 11, QuestionID: 1},
		{ID: 12, QuestionID: 2},
		{ID: 13, QuestionID: 3},
	}
	correct := true
	wrong := false
	results := []GradingResult{
		{AnswerID: 11, QuestionID: 1, PointsAwarded: 10, IsCorrect: &correct},
		{AnswerID: 12, QuestionID: 2, PointsAwarded: 0, IsCorrect: &wrong},
		{AnswerID: 13, QuestionID: 3, NeedsReview: true},
	}

	graded := applyGradingResults(answers, results, now)

	if len(graded) != 2 {
		t.Fatalf("graded %d answers, want 2 (review answers stay untouched)", len(graded))
	}

	for _, answer := range graded {
		if answer.PointsAwarded == nil {
			t.Errorf("answer %d missing points", answer.ID)
			continue
		}
		if answer.GradedAt == nil {
			t.Errorf("answer %d missing graded_at", answer.ID)
		}
	}

	if *graded[0].PointsAwarded != 10 {
		t.Errorf("answer 11 points = %v, want 10", *graded[0].PointsAwarded)
	}
	if *graded[1].PointsAwarded != 0 {
		t.Errorf("answer 12 points = %v, want 0", *graded[1].PointsAwarded)
	}

	// The essay answer keeps nil grading fields until manual review.
	if answers[2].PointsAwarded != nil || answers[2].GradedAt != nil {
		t.Error("needs-review answer should not be auto-graded")
	}
}

func BenchmarkGradeSubmissionAnswers(b *testing.B) {
	now := time.Now()

	questions := make([]*models.AssessmentQuestion, 50)
	answers := make([]models.SubmissionAnswer, 50)
	for i := range questions {
		id := uint(i + 1)
		questions[i] = choiceQuestion(id, models.MultipleChoice, 10, id*100)
		answers[i] = answerFor(id+1000, id, strconv.FormatUint(uint64(id*100), 10))
	}
	submission := &models.StudentSubmission{ID: 1, Answers: answers}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gradeSubmissionAnswers(submission, questions, 70, now)
	}
}
