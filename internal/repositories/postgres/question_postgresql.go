package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/cache"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// Create inserts the question with Order computed inside the statement
// (current max for the assessment plus one), so concurrent creates
// never produce duplicate positions.
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.AssessmentQuestion) error {
	now := time.Now()
	err := q.getDB(tx).WithContext(ctx).Raw(`
		INSERT INTO assessment_questions
			(assessment_id, question_text, question_type, points, "order", correct_answer, feedback, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM assessment_questions
			 WHERE assessment_id = ? AND deleted_at IS NULL),
			?, ?, ?, ?, ?)
		RETURNING id, "order"`,
		question.AssessmentID, question.QuestionText, question.QuestionType, question.Points,
		question.AssessmentID,
		question.CorrectAnswer, question.Feedback, question.Settings, now, now,
	).Row().Scan(&question.ID, &question.Order)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	question.CreatedAt = now
	question.UpdatedAt = now

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.AssessmentID)

	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentQuestion, error) {
	var question models.AssessmentQuestion
	if err := q.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDWithOptions(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentQuestion, error) {
	var question models.AssessmentQuestion
	err := q.getDB(tx).WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.order ASC")
		}).
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.AssessmentQuestion) error {
	if err := q.getDB(tx).WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.AssessmentID)

	return nil
}

func (q *QuestionPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	var question models.AssessmentQuestion
	if err := q.getDB(tx).WithContext(ctx).Select("id, assessment_id").First(&question, id).Error; err != nil {
		return err
	}

	result := q.getDB(tx).WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update question fields: %w", result.Error)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.AssessmentID)

	return nil
}

// Delete soft deletes the question; options cascade at the DB level
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var question models.AssessmentQuestion
	if err := q.getDB(tx).WithContext(ctx).Select("id, assessment_id").First(&question, id).Error; err != nil {
		return err
	}

	if err := q.getDB(tx).WithContext(ctx).Delete(&models.AssessmentQuestion{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.AssessmentID)

	return nil
}

// GetByAssessment returns the ordered questions of an assessment
func (q *QuestionPostgreSQL) GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.AssessmentQuestion, error) {
	fetch := func() ([]*models.AssessmentQuestion, error) {
		var questions []*models.AssessmentQuestion
		err := q.getDB(tx).WithContext(ctx).
			Where("assessment_id = ?", assessmentID).
			Order(`"order" ASC`).
			Preload("Options", func(db *gorm.DB) *gorm.DB {
				return db.Order("question_options.order ASC")
			}).
			Find(&questions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get questions by assessment: %w", err)
		}
		return questions, nil
	}

	// Transactional reads must see uncommitted writes, so skip cache.
	if tx != nil {
		return fetch()
	}

	var questions []*models.AssessmentQuestion
	cacheKey := fmt.Sprintf("assessment:%d", assessmentID)
	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) (int64, error) {
	var count int64
	err := q.getDB(tx).WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}

func (q *QuestionPostgreSQL) GetTotalPoints(ctx context.Context, tx *gorm.DB, assessmentID uint) (int, error) {
	var total int
	err := q.getDB(tx).WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("assessment_id = ?", assessmentID).
		Select("COALESCE(SUM(points), 0)").
		Row().Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum question points: %w", err)
	}
	return total, nil
}

// UpdateOrders rewrites question positions in one pass
func (q *QuestionPostgreSQL) UpdateOrders(ctx context.Context, tx *gorm.DB, assessmentID uint, orders []repositories.QuestionOrder) error {
	db := q.getDB(tx)
	for _, item := range orders {
		result := db.WithContext(ctx).
			Model(&models.AssessmentQuestion{}).
			Where("id = ? AND assessment_id = ?", item.QuestionID, assessmentID).
			Update("order", item.Order)
		if result.Error != nil {
			return fmt.Errorf("failed to update question order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, assessmentID)

	return nil
}

type OptionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewOptionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.OptionRepository {
	return &OptionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (o *OptionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return o.db
}

// Create inserts the option with Order computed inside the statement,
// same scheme as question creation.
func (o *OptionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error {
	now := time.Now()
	err := o.getDB(tx).WithContext(ctx).Raw(`
		INSERT INTO question_options
			(question_id, option_text, is_correct, "order", created_at, updated_at)
		VALUES (?, ?, ?,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM question_options WHERE question_id = ?),
			?, ?)
		RETURNING id, "order"`,
		option.QuestionID, option.OptionText, option.IsCorrect,
		option.QuestionID, now, now,
	).Row().Scan(&option.ID, &option.Order)
	if err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	option.CreatedAt = now
	option.UpdatedAt = now

	cache.InvalidateOptionCache(ctx, o.cacheManager, option.QuestionID)

	return nil
}

func (o *OptionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuestionOption, error) {
	var option models.QuestionOption
	if err := o.getDB(tx).WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (o *OptionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error {
	if err := o.getDB(tx).WithContext(ctx).Save(option).Error; err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}

	cache.InvalidateOptionCache(ctx, o.cacheManager, option.QuestionID)

	return nil
}

func (o *OptionPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	var option models.QuestionOption
	if err := o.getDB(tx).WithContext(ctx).Select("id, question_id").First(&option, id).Error; err != nil {
		return err
	}

	result := o.getDB(tx).WithContext(ctx).
		Model(&models.QuestionOption{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update option fields: %w", result.Error)
	}

	cache.InvalidateOptionCache(ctx, o.cacheManager, option.QuestionID)

	return nil
}

func (o *OptionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var option models.QuestionOption
	if err := o.getDB(tx).WithContext(ctx).Select("id, question_id").First(&option, id).Error; err != nil {
		return err
	}

	if err := o.getDB(tx).WithContext(ctx).Delete(&models.QuestionOption{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}

	cache.InvalidateOptionCache(ctx, o.cacheManager, option.QuestionID)

	return nil
}

func (o *OptionPostgreSQL) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.QuestionOption, error) {
	fetch := func() ([]*models.QuestionOption, error) {
		var options []*models.QuestionOption
		err := o.getDB(tx).WithContext(ctx).
			Where("question_id = ?", questionID).
			Order(`"order" ASC`).
			Find(&options).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get options by question: %w", err)
		}
		return options, nil
	}

	if tx != nil {
		return fetch()
	}

	var options []*models.QuestionOption
	cacheKey := fmt.Sprintf("options:%d", questionID)
	err := o.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &options, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

// GetCorrectOption returns the option marked correct for the question
func (o *OptionPostgreSQL) GetCorrectOption(ctx context.Context, tx *gorm.DB, questionID uint) (*models.QuestionOption, error) {
	var option models.QuestionOption
	err := o.getDB(tx).WithContext(ctx).
		Where("question_id = ? AND is_correct = ?", questionID, true).
		Order(`"order" ASC`).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}
