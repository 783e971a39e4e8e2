package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Defaults applied when a question create request leaves fields empty
const (
	defaultQuestionPoints = 10
	defaultOptionText     = "New Option"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== QUESTION OPERATIONS =====

func (s *questionService) Create(ctx context.Context, assessmentID uint, req *CreateQuestionRequest, userID string) (*QuestionResponse, error) {
	s.logger.Info("Creating question", "assessment_id", assessmentID, "user_id", userID)

	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.requireEditAccess(ctx, assessmentID, userID, "add_question"); err != nil {
		return nil, err
	}

	question := &models.AssessmentQuestion{
		AssessmentID:  assessmentID,
		QuestionText:  req.QuestionText,
		QuestionType:  models.MultipleChoice,
		Points:        defaultQuestionPoints,
		CorrectAnswer: req.CorrectAnswer,
		Feedback:      req.Feedback,
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if len(req.Settings) > 0 {
		question.Settings = datatypes.JSON(req.Settings)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Question().Create(ctx, tx, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		for _, optReq := range req.Options {
			option := buildOption(question.ID, &optReq)
			if err := s.repo.Option().Create(ctx, tx, option); err != nil {
				return fmt.Errorf("failed to create option: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question created", "question_id", question.ID, "assessment_id", assessmentID)

	return s.GetByID(ctx, question.ID, userID)
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByIDWithOptions(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	canEdit, err := s.canEditAssessment(ctx, question.AssessmentID, userID)
	if err != nil {
		return nil, err
	}

	return &QuestionResponse{
		AssessmentQuestion: question,
		CanEdit:            canEdit,
	}, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.requireEditAccess(ctx, question.AssessmentID, userID, "update_question"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.QuestionText != nil {
		fields["question_text"] = *req.QuestionText
	}
	if req.QuestionType != nil {
		fields["question_type"] = *req.QuestionType
	}
	if req.Points != nil {
		fields["points"] = *req.Points
	}
	if req.Order != nil {
		fields["order"] = *req.Order
	}
	if req.CorrectAnswer != nil {
		fields["correct_answer"] = *req.CorrectAnswer
	}
	if req.Feedback != nil {
		fields["feedback"] = *req.Feedback
	}
	if len(req.Settings) > 0 {
		fields["settings"] = datatypes.JSON(req.Settings)
	}

	if len(fields) > 0 {
		if err := s.repo.Question().UpdateFields(ctx, s.db, id, fields); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrQuestionNotFound
			}
			return nil, fmt.Errorf("failed to update question: %w", err)
		}
	}

	s.logger.Info("Question updated", "question_id", id)

	return s.GetByID(ctx, id, userID)
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", userID)

	question, err := s.repo.Question().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.requireEditAccess(ctx, question.AssessmentID, userID, "delete_question"); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *questionService) GetByAssessment(ctx context.Context, assessmentID uint, userID string) ([]*QuestionResponse, error) {
	canEdit, err := s.canEditAssessment(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByAssessment(ctx, s.db, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	responses := make([]*QuestionResponse, len(questions))
	for i, question := range questions {
		responses[i] = &QuestionResponse{
			AssessmentQuestion: question,
			CanEdit:            canEdit,
		}
	}

	return responses, nil
}

func (s *questionService) Reorder(ctx context.Context, assessmentID uint, req *ReorderQuestionsRequest, userID string) error {
	s.logger.Info("Reordering questions", "assessment_id", assessmentID, "count", len(req.Orders), "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if err := s.requireEditAccess(ctx, assessmentID, userID, "reorder_questions"); err != nil {
		return err
	}

	orders := make([]repositories.QuestionOrder, len(req.Orders))
	for i, item := range req.Orders {
		orders[i] = repositories.QuestionOrder{
			QuestionID: item.QuestionID,
			Order:      item.Order,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Question().UpdateOrders(ctx, tx, assessmentID, orders)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotInAssessment
		}
		return fmt.Errorf("failed to reorder questions: %w", err)
	}

	s.logger.Info("Questions reordered", "assessment_id", assessmentID)
	return nil
}

// ===== OPTION OPERATIONS =====

func (s *questionService) AddOption(ctx context.Context, questionID uint, req *CreateOptionRequest, userID string) (*models.QuestionOption, error) {
	s.logger.Info("Adding option", "question_id", questionID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.requireEditAccess(ctx, question.AssessmentID, userID, "add_option"); err != nil {
		return nil, err
	}

	option := buildOption(questionID, req)
	if err := s.repo.Option().Create(ctx, s.db, option); err != nil {
		return nil, fmt.Errorf("failed to create option: %w", err)
	}

	s.logger.Info("Option added", "option_id", option.ID, "question_id", questionID)
	return option, nil
}

func (s *questionService) UpdateOption(ctx context.Context, optionID uint, req *UpdateOptionRequest, userID string) (*models.QuestionOption, error) {
	s.logger.Info("Updating option", "option_id", optionID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	option, err := s.repo.Option().GetByID(ctx, s.db, optionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}

	if err := s.requireOptionEditAccess(ctx, option.QuestionID, userID, "update_option"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.OptionText != nil {
		fields["option_text"] = *req.OptionText
	}
	if req.IsCorrect != nil {
		fields["is_correct"] = *req.IsCorrect
	}
	if req.Order != nil {
		fields["order"] = *req.Order
	}

	if len(fields) > 0 {
		if err := s.repo.Option().UpdateFields(ctx, s.db, optionID, fields); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrOptionNotFound
			}
			return nil, fmt.Errorf("failed to update option: %w", err)
		}
	}

	updated, err := s.repo.Option().GetByID(ctx, s.db, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload option: %w", err)
	}

	return updated, nil
}

func (s *questionService) DeleteOption(ctx context.Context, optionID uint, userID string) error {
	s.logger.Info("Deleting option", "option_id", optionID, "user_id", userID)

	option, err := s.repo.Option().GetByID(ctx, s.db, optionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("failed to get option: %w", err)
	}

	if err := s.requireOptionEditAccess(ctx, option.QuestionID, userID, "delete_option"); err != nil {
		return err
	}

	if err := s.repo.Option().Delete(ctx, s.db, optionID); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}

	s.logger.Info("Option deleted", "option_id", optionID)
	return nil
}

func (s *questionService) GetOptions(ctx context.Context, questionID uint, userID string) ([]*models.QuestionOption, error) {
	if _, err := s.repo.Question().GetByID(ctx, s.db, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	options, err := s.repo.Option().GetByQuestion(ctx, s.db, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}

	return options, nil
}

// ===== HELPERS =====

func buildOption(questionID uint, req *CreateOptionRequest) *models.QuestionOption {
	option := &models.QuestionOption{
		QuestionID: questionID,
		OptionText: defaultOptionText,
	}
	if req.OptionText != nil && *req.OptionText != "" {
		option.OptionText = *req.OptionText
	}
	if req.IsCorrect != nil {
		option.IsCorrect = *req.IsCorrect
	}
	return option
}

func (s *questionService) canEditAssessment(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.Role == models.RoleAdmin {
		return true, nil
	}
	if user.Role != models.RoleTeacher {
		return false, nil
	}

	return s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
}

func (s *questionService) requireEditAccess(ctx context.Context, assessmentID uint, userID, action string) error {
	canEdit, err := s.canEditAssessment(ctx, assessmentID, userID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !canEdit {
		return NewPermissionError(userID, assessmentID, "assessment", action, "not owner or insufficient permissions")
	}
	return nil
}

func (s *questionService) requireOptionEditAccess(ctx context.Context, questionID uint, userID, action string) error {
	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	return s.requireEditAccess(ctx, question.AssessmentID, userID, action)
}
