package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).Preload("Group").First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Group").
		First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	db := s.getDB(tx)
	var students []*models.Student
	var total int64

	query := db.WithContext(ctx).Model(&models.Student{})
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR student_id ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Preload("Group").Order("full_name ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (s *StudentPostgreSQL) GetByGroup(ctx context.Context, tx *gorm.DB, groupID uint) ([]*models.Student, error) {
	db := s.getDB(tx)
	var students []*models.Student
	if err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("full_name ASC").
		Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to get students for group: %w", err)
	}
	return students, nil
}

func (s *StudentPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := s.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
