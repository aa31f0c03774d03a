package repositories

import (
	"context"
	"time"

	"github.com/hemis-edu/exam-service/internal/models"
	"gorm.io/gorm"
)

// TestRepository interface for exam definition operations
type TestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) // Include subject, groups
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.Test, int64, error)
	GetVisibleToGroup(ctx context.Context, tx *gorm.DB, groupID uint) ([]*models.Test, error)

	// Group assignment
	AssignGroups(ctx context.Context, tx *gorm.DB, testID uint, groupIDs []uint) error
	UnassignGroup(ctx context.Context, tx *gorm.DB, testID, groupID uint) error
	IsAssignedToGroup(ctx context.Context, tx *gorm.DB, testID, groupID uint) (bool, error)

	// Mass control
	UpdateStatusBulk(ctx context.Context, tx *gorm.DB, from, to models.TestStatus) (int64, error)
	ExtendActiveWindows(ctx context.Context, tx *gorm.DB, extension time.Duration) (int64, error)

	// Statistics
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.TestStatus]int64, error)
}

// SubjectRepository interface for subject catalog operations
type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error)
}

// GroupRepository interface for academic group operations
type GroupRepository interface {
	Create(ctx context.Context, tx *gorm.DB, group *models.Group) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Group, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Group, error)
}
