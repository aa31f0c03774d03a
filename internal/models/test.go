package models

import (
	"time"

	"gorm.io/gorm"
)

// TestStatus is driven by staff and by the mass-control endpoints, never by
// the passage of time itself. Students may only enter tests in Active status.
type TestStatus string

const (
	TestScheduled TestStatus = "scheduled"
	TestActive    TestStatus = "active"
	TestPaused    TestStatus = "paused"
	TestCompleted TestStatus = "completed"
)

func (s TestStatus) IsValid() bool {
	switch s {
	case TestScheduled, TestActive, TestPaused, TestCompleted:
		return true
	}
	return false
}

// Subject groups tests by discipline.
type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Code      *string   `json:"code,omitempty" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Test is an exam definition. QuestionCount questions are sampled from the
// bank for each session; MaxScore caps the total regardless of bank size.
type Test struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Title         string     `json:"title" gorm:"size:500;not null"`
	Description   *string    `json:"description,omitempty" gorm:"type:text"`
	SubjectID     uint       `json:"subject_id" gorm:"not null;index"`
	QuestionCount int        `json:"question_count" gorm:"not null;default:25"`
	Duration      int        `json:"duration" gorm:"not null;default:60"` // minutes
	MaxScore      int        `json:"max_score" gorm:"not null;default:50"`
	PassingScore  int        `json:"passing_score" gorm:"not null;default:30"`
	StartDate     time.Time  `json:"start_date" gorm:"not null;index"`
	EndDate       time.Time  `json:"end_date" gorm:"not null;index"`
	Status        TestStatus `json:"status" gorm:"size:20;not null;default:'scheduled';index"`

	// AllowMobileAccess gates Start for requests identified as mobile.
	AllowMobileAccess bool `json:"allow_mobile_access" gorm:"default:true"`

	CreatedBy string         `json:"created_by" gorm:"size:255;not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Subject   *Subject     `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Creator   *User        `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Questions []Question   `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
	Groups    []Group      `json:"groups,omitempty" gorm:"many2many:test_assignments;"`
	Results   []TestResult `json:"results,omitempty" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

// IsWithinWindow reports whether now falls inside [StartDate, EndDate].
// Both boundaries are inclusive.
func (t *Test) IsWithinWindow(now time.Time) bool {
	return !now.Before(t.StartDate) && !now.After(t.EndDate)
}

// EffectivePassingScore falls back to the institutional default when the
// test carries no explicit threshold.
func (t *Test) EffectivePassingScore() int {
	if t.PassingScore > 0 {
		return t.PassingScore
	}
	return DefaultPassingScore
}

// TestAssignment is the join row between tests and groups. Kept as an
// explicit model so assignments carry their own timestamps.
type TestAssignment struct {
	TestID    uint      `json:"test_id" gorm:"primaryKey"`
	GroupID   uint      `json:"group_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (TestAssignment) TableName() string {
	return "test_assignments"
}
