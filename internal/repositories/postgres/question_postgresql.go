package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/cache"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
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

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	_ = q.cacheManager.InvalidateQuestion(ctx, question.TestID)
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	_ = q.cacheManager.InvalidateQuestion(ctx, question.TestID)
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	question, err := q.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	_ = q.cacheManager.InvalidateQuestion(ctx, question.TestID)
	return nil
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}

	_ = q.cacheManager.InvalidateQuestion(ctx, questions[0].TestID)
	return nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions for test: %w", err)
	}
	return questions, nil
}

// GetIDsByTest feeds the session sampler; the full rows are not needed
// until grading.
func (q *QuestionPostgreSQL) GetIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error) {
	db := q.getDB(tx)

	if tx != nil {
		return q.fetchIDsByTest(ctx, db, testID)
	}

	cacheKey := fmt.Sprintf("test:%d:ids", testID)
	var ids []uint
	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &ids, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return q.fetchIDsByTest(ctx, db, testID)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (q *QuestionPostgreSQL) fetchIDsByTest(ctx context.Context, db *gorm.DB, testID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_id = ?", testID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get question ids for test: %w", err)
	}
	return ids, nil
}

func (q *QuestionPostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_id = ?", testID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (q *QuestionPostgreSQL) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions for test: %w", err)
	}

	_ = q.cacheManager.InvalidateQuestion(ctx, testID)
	return nil
}
