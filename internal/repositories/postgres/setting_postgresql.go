package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hemis-edu/exam-service/internal/cache"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
)

type SettingPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSettingPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SettingRepository {
	return &SettingPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SettingPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SettingPostgreSQL) Get(ctx context.Context, tx *gorm.DB, key string) (string, error) {
	db := s.getDB(tx)

	if tx == nil {
		if value, err := s.cacheManager.Setting.GetString(ctx, key); err == nil {
			return value, nil
		}
	}

	var setting models.GlobalSetting
	if err := db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		return "", err
	}

	if tx == nil {
		_ = s.cacheManager.Setting.SetString(ctx, key, setting.Value, cache.SettingCacheConfig.TTL)
	}
	return setting.Value, nil
}

func (s *SettingPostgreSQL) Set(ctx context.Context, tx *gorm.DB, setting *models.GlobalSetting) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_by", "updated_at"}),
		}).
		Create(setting).Error; err != nil {
		return fmt.Errorf("failed to set global setting: %w", err)
	}

	_ = s.cacheManager.InvalidateSetting(ctx, setting.Key)
	return nil
}

func (s *SettingPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.GlobalSetting, error) {
	db := s.getDB(tx)
	var settings []*models.GlobalSetting
	if err := db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
