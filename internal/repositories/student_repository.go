package repositories

import (
	"context"

	"github.com/hemis-edu/exam-service/internal/models"
	"gorm.io/gorm"
)

// StudentRepository interface for academic profile operations
type StudentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error

	// Identity resolution. GetByUserID maps a Casdoor user to the academic
	// profile; missing rows surface as gorm.ErrRecordNotFound.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)
	GetByGroup(ctx context.Context, tx *gorm.DB, groupID uint) ([]*models.Student, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
