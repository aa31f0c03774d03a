package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db *gorm.DB
}

func NewDashboardPostgreSQL(db *gorm.DB) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db}
}

// GetStats aggregates the monitoring dashboard counters in one pass per table.
func (d *DashboardPostgreSQL) GetStats(ctx context.Context) (*repositories.DashboardStats, error) {
	stats := &repositories.DashboardStats{}

	var testRows []struct {
		Status models.TestStatus
		Count  int64
	}
	if err := d.db.WithContext(ctx).
		Model(&models.Test{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&testRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tests: %w", err)
	}
	for _, row := range testRows {
		switch row.Status {
		case models.TestActive:
			stats.ActiveTests = row.Count
		case models.TestPaused:
			stats.PausedTests = row.Count
		case models.TestScheduled:
			stats.ScheduledTests = row.Count
		}
	}

	if err := d.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("status = ?", models.ResultInProgress).
		Count(&stats.SessionsInProgress).Error; err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	todayStart := time.Now().Truncate(24 * time.Hour)
	var sessionRow struct {
		Completed int64
		Passed    int64
	}
	if err := d.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Select(`COUNT(*) AS completed,
			COUNT(*) FILTER (WHERE status = 'passed') AS passed`).
		Where("completed_at >= ?", todayStart).
		Scan(&sessionRow).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	stats.CompletedToday = sessionRow.Completed
	stats.PassedToday = sessionRow.Passed

	if err := d.db.WithContext(ctx).
		Model(&models.Student{}).
		Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	return stats, nil
}
