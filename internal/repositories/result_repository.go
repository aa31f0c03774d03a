package repositories

import (
	"context"

	"github.com/hemis-edu/exam-service/internal/models"
	"gorm.io/gorm"
)

// ResultRepository interface for exam session operations
type ResultRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) // Include student, test, answers
	Update(ctx context.Context, tx *gorm.DB, result *models.TestResult) error

	// Session lookups. GetByIDForUpdate takes a row-level lock and must run
	// inside a transaction; it serializes concurrent submits of one session.
	GetActiveSession(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error)
	GetBlocking(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.TestResult, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters ResultFilters) ([]*models.TestResult, int64, error)

	// Retake grants
	GrantRetake(ctx context.Context, tx *gorm.DB, ids []uint, grantedBy string) (int64, error)

	// Statistics
	GetTestStats(ctx context.Context, tx *gorm.DB, testID uint) (*TestStats, error)
}

// AnswerRepository interface for recorded answer operations
type AnswerRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error
	GetByResult(ctx context.Context, tx *gorm.DB, resultID uint) ([]*models.StudentAnswer, error)
}
