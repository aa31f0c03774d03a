package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hemis-edu/exam-service/internal/cache"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)

	// Skip the cache inside transactions to avoid reading stale rows
	if tx != nil {
		var test models.Test
		if err := db.WithContext(ctx).First(&test, id).Error; err != nil {
			return nil, err
		}
		return &test, nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var test models.Test

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.Test
		if err := db.WithContext(ctx).First(&dbTest, id).Error; err != nil {
			return nil, err
		}
		return &dbTest, nil
	})
	if err != nil {
		return nil, err
	}

	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	var test models.Test
	if err := db.WithContext(ctx).
		Preload("Subject").
		Preload("Groups").
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(test).Error; err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}

	_ = t.cacheManager.InvalidateTest(ctx, test.ID)
	return nil
}

func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Test{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}

	_ = t.cacheManager.InvalidateTest(ctx, id)
	return nil
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	var total int64

	query := db.WithContext(ctx).Model(&models.Test{})
	query = t.helpers.ApplyTestFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Subject").Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

// GetVisibleToGroup returns active tests assigned to the group. Window
// filtering is a service concern; students see upcoming windows too.
func (t *TestPostgreSQL) GetVisibleToGroup(ctx context.Context, tx *gorm.DB, groupID uint) ([]*models.Test, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	if err := db.WithContext(ctx).
		Joins("JOIN test_assignments ON test_assignments.test_id = tests.id").
		Where("test_assignments.group_id = ? AND tests.status = ?", groupID, models.TestActive).
		Preload("Subject").
		Order("tests.start_date ASC").
		Find(&tests).Error; err != nil {
		return nil, fmt.Errorf("failed to get tests for group: %w", err)
	}
	return tests, nil
}

func (t *TestPostgreSQL) AssignGroups(ctx context.Context, tx *gorm.DB, testID uint, groupIDs []uint) error {
	if len(groupIDs) == 0 {
		return nil
	}

	db := t.getDB(tx)
	assignments := make([]models.TestAssignment, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		assignments = append(assignments, models.TestAssignment{TestID: testID, GroupID: groupID})
	}

	// ON CONFLICT DO NOTHING keeps re-assignment idempotent
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error; err != nil {
		return fmt.Errorf("failed to assign groups: %w", err)
	}

	_ = t.cacheManager.InvalidateTest(ctx, testID)
	return nil
}

func (t *TestPostgreSQL) UnassignGroup(ctx context.Context, tx *gorm.DB, testID, groupID uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).
		Where("test_id = ? AND group_id = ?", testID, groupID).
		Delete(&models.TestAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to unassign group: %w", err)
	}

	_ = t.cacheManager.InvalidateTest(ctx, testID)
	return nil
}

func (t *TestPostgreSQL) IsAssignedToGroup(ctx context.Context, tx *gorm.DB, testID, groupID uint) (bool, error) {
	db := t.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.TestAssignment{}).
		Where("test_id = ? AND group_id = ?", testID, groupID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *TestPostgreSQL) UpdateStatusBulk(ctx context.Context, tx *gorm.DB, from, to models.TestStatus) (int64, error) {
	db := t.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Test{}).
		Where("status = ?", from).
		Update("status", to)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update test statuses: %w", result.Error)
	}

	_ = t.cacheManager.Test.InvalidatePattern(ctx, "*")
	return result.RowsAffected, nil
}

func (t *TestPostgreSQL) ExtendActiveWindows(ctx context.Context, tx *gorm.DB, extension time.Duration) (int64, error) {
	db := t.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Test{}).
		Where("status = ?", models.TestActive).
		Update("end_date", gorm.Expr("end_date + ?::interval", fmt.Sprintf("%d seconds", int(extension.Seconds()))))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to extend test windows: %w", result.Error)
	}

	_ = t.cacheManager.Test.InvalidatePattern(ctx, "*")
	return result.RowsAffected, nil
}

func (t *TestPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.TestStatus]int64, error) {
	db := t.getDB(tx)

	var rows []struct {
		Status models.TestStatus
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Test{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.TestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
