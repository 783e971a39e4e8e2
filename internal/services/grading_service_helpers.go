package services

import (
	"math"
	"strconv"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// gradeSubmissionAnswers scores every question of an assessment
// against the submission's answers. Pure: callers persist the result.
func gradeSubmissionAnswers(submission *models.StudentSubmission, questions []*models.AssessmentQuestion, passingScore int, now time.Time) *SubmissionGradingResult {
	answersByQuestion := make(map[uint]*models.SubmissionAnswer, len(submission.Answers))
	for i := range submission.Answers {
		answersByQuestion[submission.Answers[i].QuestionID] = &submission.Answers[i]
	}

	var totalPoints, earnedPoints float64
	needsReview := false
	results := make([]GradingResult, 0, len(questions))

	for _, question := range questions {
		totalPoints += float64(question.Points)

		result := gradeAnswer(question, answersByQuestion[question.ID], now)
		if result.NeedsReview {
			needsReview = true
		}
		earnedPoints += result.PointsAwarded
		results = append(results, result)
	}

	score := computeScore(earnedPoints, totalPoints)
	passed := score >= float64(passingScore)

	status := models.SubmissionGraded
	if needsReview {
		status = models.SubmissionNeedsReview
	}

	return &SubmissionGradingResult{
		SubmissionID: submission.ID,
		Status:       status,
		TotalPoints:  totalPoints,
		EarnedPoints: earnedPoints,
		Score:        score,
		Passed:       passed,
		NeedsReview:  needsReview,
		Answers:      results,
		GradedAt:     now,
	}
}

// gradeAnswer scores one answer. Essay and code answers are never
// auto-scored; they flag the submission for manual review instead.
func gradeAnswer(question *models.AssessmentQuestion, answer *models.SubmissionAnswer, now time.Time) GradingResult {
	result := GradingResult{
		QuestionID:   question.ID,
		QuestionType: string(question.QuestionType),
		MaxPoints:    float64(question.Points),
	}
	if answer != nil {
		result.AnswerID = answer.ID
	}

	if !question.QuestionType.AutoGradeable() {
		// A manual question routes the submission to review even
		// when left unanswered.
		result.NeedsReview = true
		return result
	}

	correct := isAnswerCorrect(question, answer)
	result.IsCorrect = &correct
	result.GradedAt = now
	if correct {
		result.PointsAwarded = float64(question.Points)
	}

	return result
}

func isAnswerCorrect(question *models.AssessmentQuestion, answer *models.SubmissionAnswer) bool {
	if answer == nil || answer.AnswerText == nil {
		return false
	}

	switch question.QuestionType {
	case models.MultipleChoice, models.TrueFalse:
		// The stored answer is the chosen option's ID
		correctOption := findCorrectOption(question.Options)
		if correctOption == nil {
			return false
		}
		return *answer.AnswerText == strconv.FormatUint(uint64(correctOption.ID), 10)

	case models.Matching, models.FillBlank:
		if question.CorrectAnswer == nil {
			return false
		}
		return *answer.AnswerText == *question.CorrectAnswer

	default:
		return false
	}
}

func findCorrectOption(options []models.QuestionOption) *models.QuestionOption {
	for i := range options {
		if options[i].IsCorrect {
			return &options[i]
		}
	}
	return nil
}

// computeScore maps earned points to a 0-100 integer-rounded score.
// An assessment without points scores zero rather than dividing by it.
func computeScore(earnedPoints, totalPoints float64) float64 {
	if totalPoints == 0 {
		return 0
	}
	return math.Round(earnedPoints / totalPoints * 100)
}

// applyGradingResults copies auto-grading outcomes onto the stored
// answer rows and returns the rows that need persisting.
func applyGradingResults(answers []models.SubmissionAnswer, results []GradingResult, now time.Time) []*models.SubmissionAnswer {
	resultsByAnswer := make(map[uint]*GradingResult, len(results))
	for i := range results {
		if results[i].AnswerID != 0 && !results[i].NeedsReview {
			resultsByAnswer[results[i].AnswerID] = &results[i]
		}
	}

	var graded []*models.SubmissionAnswer
	for i := range answers {
		result, ok := resultsByAnswer[answers[i].ID]
		if !ok {
			continue
		}
		answers[i].IsCorrect = result.IsCorrect
		points := result.PointsAwarded
		answers[i].PointsAwarded = &points
		answers[i].GradedAt = &now
		graded = append(graded, &answers[i])
	}

	return graded
}
