package postgres

import (
	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/repositories"
)

// SharedHelpers contains query-building helpers common to the repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyTestFilters applies common filters to test queries
func (h *SharedHelpers) ApplyTestFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.GroupID != nil {
		query = query.Joins("JOIN test_assignments ON test_assignments.test_id = tests.id").
			Where("test_assignments.group_id = ?", *filters.GroupID)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("end_date <= ?", *filters.DateTo)
	}
	return query
}

// ApplyResultFilters applies common filters to result queries
func (h *SharedHelpers) ApplyResultFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("test_results.status = ?", *filters.Status)
	}
	if filters.TestID != nil {
		query = query.Where("test_results.test_id = ?", *filters.TestID)
	}
	if filters.StudentID != nil {
		query = query.Where("test_results.student_id = ?", *filters.StudentID)
	}
	if filters.GroupID != nil {
		query = query.Joins("JOIN students ON students.id = test_results.student_id").
			Where("students.group_id = ?", *filters.GroupID)
	}
	if filters.CanRetake != nil {
		query = query.Where("test_results.can_retake = ?", *filters.CanRetake)
	}
	if filters.DateFrom != nil {
		query = query.Where("test_results.started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("test_results.started_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with a column whitelist
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"id":           true,
		"title":        true,
		"status":       true,
		"start_date":   true,
		"end_date":     true,
		"started_at":   true,
		"completed_at": true,
		"score":        true,
		"percentage":   true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
