package repositories

import (
	"context"

	"github.com/hemis-edu/exam-service/internal/models"
	"gorm.io/gorm"
)

// SettingRepository interface for global key/value settings
type SettingRepository interface {
	// Get returns the stored value or gorm.ErrRecordNotFound.
	Get(ctx context.Context, tx *gorm.DB, key string) (string, error)
	Set(ctx context.Context, tx *gorm.DB, setting *models.GlobalSetting) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.GlobalSetting, error)
}

// DashboardRepository interface for monitoring aggregates
type DashboardRepository interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}
