package services

import (
	"context"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/events"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
)

// Defaults applied when a create request leaves fields empty
const (
	defaultAssessmentTitle = "Untitled Assessment"
	defaultPoints          = 100
	defaultPassingScore    = 70
	defaultAttemptsAllowed = 1
)

func (s *assessmentService) buildNewAssessment(req *CreateAssessmentRequest, creatorID string) *models.Assessment {
	assessment := &models.Assessment{
		Title:            defaultAssessmentTitle,
		Description:      req.Description,
		Instructions:     req.Instructions,
		AssessmentTypeID: req.AssessmentTypeID,
		CourseID:         req.CourseID,
		ModuleID:         req.ModuleID,
		Status:           models.StatusDraft,
		Points:           defaultPoints,
		PassingScore:     defaultPassingScore,
		AttemptsAllowed:  defaultAttemptsAllowed,
		TimeLimitMinutes: req.TimeLimitMinutes,
		ShowResults:      true,
		AvailableFrom:    req.AvailableFrom,
		AvailableUntil:   req.AvailableUntil,
		CreatedBy:        creatorID,
	}

	if req.Title != nil && *req.Title != "" {
		assessment.Title = *req.Title
	}
	if req.Points != nil {
		assessment.Points = *req.Points
	}
	if req.PassingScore != nil {
		assessment.PassingScore = *req.PassingScore
	}
	if req.AttemptsAllowed != nil {
		assessment.AttemptsAllowed = *req.AttemptsAllowed
	}
	if req.ShuffleQuestions != nil {
		assessment.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShowResults != nil {
		assessment.ShowResults = *req.ShowResults
	}

	return assessment
}

func (s *assessmentService) applyAssessmentUpdates(assessment *models.Assessment, req *UpdateAssessmentRequest) {
	if req.Title != nil {
		assessment.Title = *req.Title
	}
	if req.Description != nil {
		assessment.Description = req.Description
	}
	if req.Instructions != nil {
		assessment.Instructions = req.Instructions
	}
	if req.AssessmentTypeID != nil {
		assessment.AssessmentTypeID = req.AssessmentTypeID
	}
	if req.CourseID != nil {
		assessment.CourseID = req.CourseID
	}
	if req.ModuleID != nil {
		assessment.ModuleID = req.ModuleID
	}
	if req.Points != nil {
		assessment.Points = *req.Points
	}
	if req.PassingScore != nil {
		assessment.PassingScore = *req.PassingScore
	}
	if req.AttemptsAllowed != nil {
		assessment.AttemptsAllowed = *req.AttemptsAllowed
	}
	if req.TimeLimitMinutes != nil {
		assessment.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.ShuffleQuestions != nil {
		assessment.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShowResults != nil {
		assessment.ShowResults = *req.ShowResults
	}
	if req.AvailableFrom != nil {
		assessment.AvailableFrom = req.AvailableFrom
	}
	if req.AvailableUntil != nil {
		assessment.AvailableUntil = req.AvailableUntil
	}
	assessment.UpdatedAt = time.Now()
}

// ===== ROLE AND PERMISSION HELPERS =====

func (s *assessmentService) getUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *assessmentService) canCreateAssessment(ctx context.Context, userID string) (bool, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleTeacher || role == models.RoleAdmin, nil
}

func (s *assessmentService) CanAccess(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	switch role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleTeacher:
		return s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
	case models.RoleStudent:
		assessment, err := s.repo.Assessment().GetByID(ctx, s.db, assessmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return false, nil
			}
			return false, err
		}
		return assessment.Status == models.StatusActive, nil
	default:
		return false, nil
	}
}

func (s *assessmentService) CanEdit(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	if role == models.RoleAdmin {
		return true, nil
	}
	if role != models.RoleTeacher {
		return false, nil
	}

	return s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
}

func (s *assessmentService) CanDelete(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	return s.CanEdit(ctx, assessmentID, userID)
}

func (s *assessmentService) CanTake(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	if role != models.RoleStudent {
		return false, nil
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return assessment.IsAvailableAt(time.Now()), nil
}

// applyRoleFilters narrows list queries by the caller's role: students
// see active assessments only, teachers see their own.
func (s *assessmentService) applyRoleFilters(ctx context.Context, filters *repositories.AssessmentFilters, userID string) error {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return err
	}

	switch role {
	case models.RoleStudent:
		activeStatus := models.StatusActive
		filters.Status = &activeStatus
	case models.RoleTeacher:
		filters.CreatedBy = &userID
	case models.RoleAdmin:
		// no additional filtering
	}

	return nil
}

// ===== RESPONSE BUILDERS =====

func (s *assessmentService) buildAssessmentResponse(ctx context.Context, assessment *models.Assessment, userID string) *AssessmentResponse {
	canEdit, _ := s.CanEdit(ctx, assessment.ID, userID)
	canDelete, _ := s.CanDelete(ctx, assessment.ID, userID)
	canTake, _ := s.CanTake(ctx, assessment.ID, userID)

	return &AssessmentResponse{
		Assessment: assessment,
		CanEdit:    canEdit,
		CanDelete:  canDelete,
		CanTake:    canTake,
	}
}

func (s *assessmentService) buildListResponse(ctx context.Context, assessments []*models.Assessment, total int64, filters repositories.AssessmentFilters, userID string) *AssessmentListResponse {
	response := &AssessmentListResponse{
		Assessments: make([]*AssessmentResponse, len(assessments)),
		Total:       total,
		Page:        (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:        filters.Limit,
	}

	for i, assessment := range assessments {
		response.Assessments[i] = s.buildAssessmentResponse(ctx, assessment, userID)
	}

	return response
}

func (s *assessmentService) publishStatusEvent(ctx context.Context, assessment *models.Assessment, newStatus models.AssessmentStatus, actorID string) {
	if s.eventPublisher == nil {
		return
	}

	var eventType string
	switch newStatus {
	case models.StatusActive:
		eventType = events.EventAssessmentPublished
	case models.StatusArchived:
		eventType = events.EventAssessmentArchived
	default:
		return
	}

	event := events.NewEvent(eventType, events.AssessmentEvent{
		AssessmentID: assessment.ID,
		CourseID:     assessment.CourseID,
		Title:        assessment.Title,
		Status:       string(newStatus),
		ActorID:      actorID,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish assessment event",
			"error", err,
			"event_type", eventType,
			"assessment_id", assessment.ID)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
