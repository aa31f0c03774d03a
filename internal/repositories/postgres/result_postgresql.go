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

type ResultPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewResultPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create test result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) {
	db := r.getDB(tx)
	var result models.TestResult
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) {
	db := r.getDB(tx)
	var result models.TestResult
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Test").
		Preload("Answers").
		Preload("Answers.Question").
		First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) Update(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(result).Error; err != nil {
		return fmt.Errorf("failed to update test result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetActiveSession(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	db := r.getDB(tx)
	var result models.TestResult
	if err := db.WithContext(ctx).
		Where("student_id = ? AND test_id = ? AND status = ?", studentID, testID, models.ResultInProgress).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBlocking returns a graded, non-retakeable session for the pair, if any.
func (r *ResultPostgreSQL) GetBlocking(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	db := r.getDB(tx)
	var result models.TestResult
	if err := db.WithContext(ctx).
		Where("student_id = ? AND test_id = ? AND status <> ? AND can_retake = ?",
			studentID, testID, models.ResultInProgress, false).
		Order("completed_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByIDForUpdate locks the row with SELECT ... FOR UPDATE. Callers must
// hold a transaction.
func (r *ResultPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) {
	db := r.getDB(tx)
	var result models.TestResult
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	db := r.getDB(tx)
	var results []*models.TestResult
	var total int64

	query := db.WithContext(ctx).Model(&models.TestResult{})
	query = r.helpers.ApplyResultFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Student").Preload("Test").Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	filters.StudentID = &studentID
	return r.List(ctx, tx, filters)
}

// GrantRetake flips can_retake on graded sessions only; in_progress rows
// are left untouched.
func (r *ResultPostgreSQL) GrantRetake(ctx context.Context, tx *gorm.DB, ids []uint, grantedBy string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("id IN ? AND status <> ?", ids, models.ResultInProgress).
		Updates(map[string]interface{}{
			"can_retake":        true,
			"retake_granted_by": grantedBy,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to grant retake: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *ResultPostgreSQL) GetTestStats(ctx context.Context, tx *gorm.DB, testID uint) (*repositories.TestStats, error) {
	db := r.getDB(tx)

	fetch := func() (interface{}, error) {
		var row struct {
			Total      int
			InProgress int
			Passed     int
			Failed     int
			AvgScore   float64
			AvgPercent float64
		}
		err := db.WithContext(ctx).
			Model(&models.TestResult{}).
			Select(`COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
				COUNT(*) FILTER (WHERE status = 'passed') AS passed,
				COUNT(*) FILTER (WHERE status = 'failed') AS failed,
				COALESCE(AVG(score) FILTER (WHERE status <> 'in_progress'), 0) AS avg_score,
				COALESCE(AVG(percentage) FILTER (WHERE status <> 'in_progress'), 0) AS avg_percent`).
			Where("test_id = ?", testID).
			Scan(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get test stats: %w", err)
		}

		stats := &repositories.TestStats{
			TotalSessions:     row.Total,
			CompletedSessions: row.Passed + row.Failed,
			InProgress:        row.InProgress,
			Passed:            row.Passed,
			Failed:            row.Failed,
			AverageScore:      row.AvgScore,
			AveragePercentage: row.AvgPercent,
		}
		if stats.CompletedSessions > 0 {
			stats.PassRate = float64(row.Passed) / float64(stats.CompletedSessions) * 100
		}
		return stats, nil
	}

	if tx != nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(*repositories.TestStats), nil
	}

	cacheKey := fmt.Sprintf("test:%d", testID)
	var stats repositories.TestStats
	if err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &stats, nil
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AnswerPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	db := a.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(answers, 100).Error; err != nil {
		return fmt.Errorf("failed to create answers: %w", err)
	}
	return nil
}

func (a *AnswerPostgreSQL) GetByResult(ctx context.Context, tx *gorm.DB, resultID uint) ([]*models.StudentAnswer, error) {
	db := a.getDB(tx)
	var answers []*models.StudentAnswer
	if err := db.WithContext(ctx).
		Where("result_id = ?", resultID).
		Preload("Question").
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers for result: %w", err)
	}
	return answers, nil
}
