package repositories

import (
	"time"

	"github.com/hemis-edu/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	SubjectID *uint              `json:"subject_id"`
	CreatedBy *string            `json:"created_by"`
	GroupID   *uint              `json:"group_id"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title", "start_date"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	Status    *models.ResultStatus `json:"status"`
	TestID    *uint                `json:"test_id"`
	StudentID *uint                `json:"student_id"`
	GroupID   *uint                `json:"group_id"`
	CanRetake *bool                `json:"can_retake"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`
	SortOrder string               `json:"sort_order"`
}

type StudentFilters struct {
	GroupID *uint                 `json:"group_id"`
	Status  *models.StudentStatus `json:"status"`
	Query   string                `json:"query"` // name or student number
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type TestStats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	InProgress        int     `json:"in_progress"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	PassRate          float64 `json:"pass_rate"`
	AverageScore      float64 `json:"average_score"`
	AveragePercentage float64 `json:"average_percentage"`
}

type DashboardStats struct {
	ActiveTests        int64 `json:"active_tests"`
	PausedTests        int64 `json:"paused_tests"`
	ScheduledTests     int64 `json:"scheduled_tests"`
	SessionsInProgress int64 `json:"sessions_in_progress"`
	CompletedToday     int64 `json:"completed_today"`
	PassedToday        int64 `json:"passed_today"`
	TotalStudents      int64 `json:"total_students"`
}
