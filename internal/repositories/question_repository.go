package repositories

import (
	"context"

	"github.com/hemis-edu/exam-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question bank operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)

	// Test-scoped queries
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error)
	GetIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error)
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
	DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error
}
