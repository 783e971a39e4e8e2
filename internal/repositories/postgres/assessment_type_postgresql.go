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

type AssessmentTypePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentTypePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AssessmentTypeRepository {
	return &AssessmentTypePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *AssessmentTypePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// List returns all assessment types ordered by name, cached since
// reference data rarely changes.
func (t *AssessmentTypePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.AssessmentType, error) {
	var types []*models.AssessmentType

	err := t.cacheManager.Fast.CacheOrExecute(ctx, "assessment_types:all", &types, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbTypes []*models.AssessmentType
		if err := t.getDB(tx).WithContext(ctx).Order("name ASC").Find(&dbTypes).Error; err != nil {
			return nil, fmt.Errorf("failed to list assessment types: %w", err)
		}
		return dbTypes, nil
	})
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (t *AssessmentTypePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentType, error) {
	var assessmentType models.AssessmentType
	if err := t.getDB(tx).WithContext(ctx).First(&assessmentType, id).Error; err != nil {
		return nil, err
	}
	return &assessmentType, nil
}

func (t *AssessmentTypePostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.AssessmentType, error) {
	var assessmentType models.AssessmentType
	if err := t.getDB(tx).WithContext(ctx).Where("name = ?", name).First(&assessmentType).Error; err != nil {
		return nil, err
	}
	return &assessmentType, nil
}

func (t *AssessmentTypePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.AssessmentType{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assessment type existence: %w", err)
	}
	return count > 0, nil
}
