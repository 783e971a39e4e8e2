package postgres

import (
	"context"
	"fmt"

	"github.com/eduzayn/lms-edunexia-sub001/internal/cache"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AssessmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create creates a new assessment and invalidates cache
func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	if err := a.getDB(tx).WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, fmt.Sprintf("creator:%s:*", assessment.CreatedBy))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, "list:*")

	return nil
}

// GetByID retrieves an assessment by ID with caching
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	// Transactional reads must see uncommitted writes, so skip cache.
	if tx != nil {
		var assessment models.Assessment
		if err := tx.WithContext(ctx).First(&assessment, id).Error; err != nil {
			return nil, err
		}
		return &assessment, nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var assessment models.Assessment

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		var dbAssessment models.Assessment
		if err := a.db.WithContext(ctx).First(&dbAssessment, id).Error; err != nil {
			return nil, err
		}
		return &dbAssessment, nil
	})
	if err != nil {
		return nil, err
	}

	return &assessment, nil
}

// GetByIDWithDetails retrieves an assessment with ordered questions and options
func (a *AssessmentPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Preload("AssessmentType").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessment_questions.order ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.order ASC")
		}).
		First(&assessment, id).Error
	if err != nil {
		return nil, err
	}

	a.calculateComputedFields(ctx, tx, &assessment)
	return &assessment, nil
}

// Update writes the full assessment row and invalidates cache
func (a *AssessmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	if err := a.getDB(tx).WithContext(ctx).Save(assessment).Error; err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, assessment.ID, assessment.CreatedBy)

	return nil
}

// UpdateFields writes only the provided columns
func (a *AssessmentPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update assessment fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, a.cacheManager.Assessment, fmt.Sprintf("id:%d", id), fmt.Sprintf("details:%d", id))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, "list:*")

	return nil
}

// Delete soft deletes an assessment
func (a *AssessmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	// Creator ID is needed for cache invalidation after the delete.
	var assessment models.Assessment
	if err := a.getDB(tx).WithContext(ctx).Select("id, created_by").First(&assessment, id).Error; err != nil {
		return err
	}

	if err := a.getDB(tx).WithContext(ctx).Delete(&models.Assessment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, id, assessment.CreatedBy)

	return nil
}

// List retrieves assessments with filters and pagination
func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.Assessment{})

	query = a.helpers.ApplyAssessmentFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var assessments []*models.Assessment
	if err := query.Preload("AssessmentType").Find(&assessments).Error; err != nil {
		return nil, 0, err
	}

	for _, assessment := range assessments {
		a.calculateComputedFields(ctx, tx, assessment)
	}

	return assessments, total, nil
}

// GetByCourse retrieves assessments that belong to a course
func (a *AssessmentPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	filters.CourseID = &courseID
	return a.List(ctx, tx, filters)
}

// GetByCreator retrieves assessments created by a specific user
func (a *AssessmentPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	filters.CreatedBy = &creatorID
	return a.List(ctx, tx, filters)
}

// UpdateStatus changes the assessment status
func (a *AssessmentPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.AssessmentStatus) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update assessment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, a.cacheManager.Assessment, fmt.Sprintf("id:%d", id), fmt.Sprintf("details:%d", id))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, "list:*")

	return nil
}

// HasSubmissions checks whether any submissions exist for the assessment
func (a *AssessmentPostgreSQL) HasSubmissions(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Where("assessment_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count > 0, nil
}

// IsOwner checks whether the user created the assessment
func (a *AssessmentPostgreSQL) IsOwner(ctx context.Context, tx *gorm.DB, id uint, userID string) (bool, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ? AND created_by = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assessment ownership: %w", err)
	}
	return count > 0, nil
}

// GetStats aggregates submission statistics for an assessment, cached
func (a *AssessmentPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.AssessmentStats, error) {
	cacheKey := fmt.Sprintf("assessment:%d:stats", id)
	var stats repositories.AssessmentStats

	err := a.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbStats repositories.AssessmentStats

		row := a.getDB(tx).WithContext(ctx).
			Model(&models.StudentSubmission{}).
			Select(`COUNT(*),
				SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
				SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
				COALESCE(AVG(score), 0),
				COALESCE(AVG(CASE WHEN passed THEN 1.0 ELSE 0.0 END) * 100, 0)`,
				models.SubmissionGraded, models.SubmissionNeedsReview).
			Where("assessment_id = ?", id).
			Row()
		if err := row.Scan(&dbStats.TotalSubmissions, &dbStats.GradedSubmissions, &dbStats.PendingReview,
			&dbStats.AverageScore, &dbStats.PassRate); err != nil {
			return nil, fmt.Errorf("failed to scan assessment stats: %w", err)
		}

		questionRow := a.getDB(tx).WithContext(ctx).
			Model(&models.AssessmentQuestion{}).
			Select("COUNT(*), COALESCE(SUM(points), 0)").
			Where("assessment_id = ?", id).
			Row()
		if err := questionRow.Scan(&dbStats.QuestionCount, &dbStats.TotalPoints); err != nil {
			return nil, fmt.Errorf("failed to scan question stats: %w", err)
		}

		return &dbStats, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetCreatorStats aggregates per-creator counters
func (a *AssessmentPostgreSQL) GetCreatorStats(ctx context.Context, tx *gorm.DB, creatorID string) (*repositories.CreatorStats, error) {
	var stats repositories.CreatorStats

	row := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Select(`COUNT(*),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END)`,
			models.StatusActive, models.StatusDraft).
		Where("created_by = ?", creatorID).
		Row()
	if err := row.Scan(&stats.TotalAssessments, &stats.ActiveAssessments, &stats.DraftAssessments); err != nil {
		return nil, fmt.Errorf("failed to scan creator stats: %w", err)
	}

	err := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Joins("JOIN assessments ON assessments.id = student_submissions.assessment_id").
		Where("assessments.created_by = ?", creatorID).
		Select("COUNT(*)").
		Row().Scan(&stats.TotalSubmissions)
	if err != nil {
		return nil, fmt.Errorf("failed to scan creator submission count: %w", err)
	}

	return &stats, nil
}

// calculateComputedFields fills the non-persisted counters
func (a *AssessmentPostgreSQL) calculateComputedFields(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) {
	var questionCount int64
	if err := a.getDB(tx).WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("assessment_id = ?", assessment.ID).
		Count(&questionCount).Error; err == nil {
		assessment.QuestionsCount = int(questionCount)
	}

	var submissionCount int64
	if err := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentSubmission{}).
		Where("assessment_id = ?", assessment.ID).
		Count(&submissionCount).Error; err == nil {
		assessment.SubmissionsCount = int(submissionCount)
	}
}
