package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
)

// SubjectPostgreSQL implements the subject catalog.
type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	if err := db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	if err := db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

// GroupPostgreSQL implements the academic group catalog.
type GroupPostgreSQL struct {
	db *gorm.DB
}

func NewGroupPostgreSQL(db *gorm.DB) repositories.GroupRepository {
	return &GroupPostgreSQL{db: db}
}

func (g *GroupPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}

func (g *GroupPostgreSQL) Create(ctx context.Context, tx *gorm.DB, group *models.Group) error {
	db := g.getDB(tx)
	if err := db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (g *GroupPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error) {
	db := g.getDB(tx)
	var group models.Group
	if err := db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Group, error) {
	if len(ids) == 0 {
		return []*models.Group{}, nil
	}

	db := g.getDB(tx)
	var groups []*models.Group
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (g *GroupPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Group, error) {
	db := g.getDB(tx)
	var groups []*models.Group
	if err := db.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
