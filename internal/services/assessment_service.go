package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eduzayn/lms-edunexia-sub001/internal/events"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"gorm.io/gorm"
)

type assessmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewAssessmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) AssessmentService {
	return &assessmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== REFERENCE DATA =====

func (s *assessmentService) GetTypes(ctx context.Context) ([]*models.AssessmentType, error) {
	types, err := s.repo.AssessmentType().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment types: %w", err)
	}
	return types, nil
}

// ===== CORE CRUD OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, creatorID string) (*AssessmentResponse, error) {
	s.logger.Info("Creating assessment", "creator_id", creatorID)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateAssessmentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	canCreate, err := s.canCreateAssessment(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !canCreate {
		return nil, NewPermissionError(creatorID, 0, "assessment", "create", "insufficient role permissions")
	}

	if req.AssessmentTypeID != nil {
		exists, err := s.repo.AssessmentType().ExistsByID(ctx, s.db, *req.AssessmentTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check assessment type: %w", err)
		}
		if !exists {
			return nil, ErrAssessmentTypeNotFound
		}
	}

	assessment := s.buildNewAssessment(req, creatorID)

	if err := s.repo.Assessment().Create(ctx, s.db, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("Assessment created", "assessment_id", assessment.ID, "creator_id", creatorID)

	return s.GetByIDWithDetails(ctx, assessment.ID, creatorID)
}

func (s *assessmentService) GetByID(ctx context.Context, id uint, userID string) (*AssessmentResponse, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id, "assessment", "read", "not owner or insufficient permissions")
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return s.buildAssessmentResponse(ctx, assessment, userID), nil
}

func (s *assessmentService) GetByIDWithDetails(ctx context.Context, id uint, userID string) (*AssessmentResponse, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id, "assessment", "read", "not owner or insufficient permissions")
	}

	assessment, err := s.repo.Assessment().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment with details: %w", err)
	}

	return s.buildAssessmentResponse(ctx, assessment, userID), nil
}

func (s *assessmentService) Update(ctx context.Context, id uint, req *UpdateAssessmentRequest, userID string) (*AssessmentResponse, error) {
	s.logger.Info("Updating assessment", "assessment_id", id, "user_id", userID)

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateAssessmentUpdate(req, assessment); len(errs) > 0 {
		return nil, errs
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "assessment", "update", "not owner or insufficient permissions")
	}

	// Status changes ride through UpdateStatus so transitions stay in
	// one place.
	if req.Status != nil && *req.Status != assessment.Status {
		if err := s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: *req.Status}, userID); err != nil {
			return nil, err
		}
	}

	s.applyAssessmentUpdates(assessment, req)

	if err := s.repo.Assessment().Update(ctx, s.db, assessment); err != nil {
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}

	s.logger.Info("Assessment updated", "assessment_id", id)

	return s.GetByIDWithDetails(ctx, id, userID)
}

func (s *assessmentService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting assessment", "assessment_id", id, "user_id", userID)

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to get assessment: %w", err)
	}

	canDelete, err := s.CanDelete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canDelete {
		return NewPermissionError(userID, id, "assessment", "delete", "not owner or insufficient permissions")
	}

	hasSubmissions, err := s.repo.Assessment().HasSubmissions(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to check submissions: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateDeletePermission(hasSubmissions, assessment.Status); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Assessment().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	s.logger.Info("Assessment deleted", "assessment_id", id)
	return nil
}

// ===== LIST OPERATIONS =====

func (s *assessmentService) List(ctx context.Context, filters repositories.AssessmentFilters, userID string) (*AssessmentListResponse, error) {
	if err := s.applyRoleFilters(ctx, &filters, userID); err != nil {
		return nil, err
	}

	assessments, total, err := s.repo.Assessment().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	return s.buildListResponse(ctx, assessments, total, filters, userID), nil
}

func (s *assessmentService) GetByCourse(ctx context.Context, courseID uint, filters repositories.AssessmentFilters, userID string) (*AssessmentListResponse, error) {
	if err := s.applyRoleFilters(ctx, &filters, userID); err != nil {
		return nil, err
	}

	assessments, total, err := s.repo.Assessment().GetByCourse(ctx, s.db, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessments by course: %w", err)
	}

	return s.buildListResponse(ctx, assessments, total, filters, userID), nil
}

func (s *assessmentService) GetByCreator(ctx context.Context, creatorID string, filters repositories.AssessmentFilters) (*AssessmentListResponse, error) {
	assessments, total, err := s.repo.Assessment().GetByCreator(ctx, s.db, creatorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessments by creator: %w", err)
	}

	return s.buildListResponse(ctx, assessments, total, filters, creatorID), nil
}

// ===== STATUS MANAGEMENT =====

func (s *assessmentService) UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, userID string) error {
	s.logger.Info("Updating assessment status", "assessment_id", id, "new_status", req.Status, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "assessment", "update_status", "not owner or insufficient permissions")
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to get assessment: %w", err)
	}

	questionCount, err := s.repo.Question().CountByAssessment(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(assessment.Status, req.Status, int(questionCount)); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Assessment().UpdateStatus(ctx, s.db, id, req.Status); err != nil {
		return fmt.Errorf("failed to update assessment status: %w", err)
	}

	s.publishStatusEvent(ctx, assessment, req.Status, userID)

	s.logger.Info("Assessment status updated", "assessment_id", id, "new_status", req.Status)
	return nil
}

func (s *assessmentService) Publish(ctx context.Context, id uint, userID string) error {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusActive}, userID)
}

func (s *assessmentService) Archive(ctx context.Context, id uint, userID string) error {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusArchived}, userID)
}

// ===== STATISTICS =====

func (s *assessmentService) GetStats(ctx context.Context, id uint, userID string) (*repositories.AssessmentStats, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id, "assessment", "view_stats", "not owner or insufficient permissions")
	}

	stats, err := s.repo.Assessment().GetStats(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment stats: %w", err)
	}

	return stats, nil
}

func (s *assessmentService) GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error) {
	stats, err := s.repo.Assessment().GetCreatorStats(ctx, s.db, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator stats: %w", err)
	}

	return stats, nil
}
