package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hemis-edu/exam-service/internal/config"
	"github.com/hemis-edu/exam-service/internal/models"
)

// InitDatabase opens the PostgreSQL connection and runs migrations.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Student{},
		&models.Subject{},
		&models.Test{},
		&models.TestAssignment{},
		&models.Question{},
		&models.TestResult{},
		&models.StudentAnswer{},
		&models.GlobalSetting{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// At most one in_progress session per (student, test). AutoMigrate
	// cannot express partial indexes, so it is created here.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_session
		 ON test_results (student_id, test_id)
		 WHERE status = 'in_progress'`,
	).Error; err != nil {
		return fmt.Errorf("failed to create active session index: %w", err)
	}

	return nil
}
