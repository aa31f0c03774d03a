package models

import (
	"time"

	"gorm.io/datatypes"
)

// Scoring constants shared by the whole service. Every correct answer is
// worth PointsPerQuestion; the total is clamped to FixedMaxScore.
const (
	PointsPerQuestion   = 2
	FixedMaxScore       = 50
	DefaultPassingScore = 30
)

type ResultStatus string

const (
	ResultInProgress ResultStatus = "in_progress"
	ResultPassed     ResultStatus = "passed"
	ResultFailed     ResultStatus = "failed"
)

func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultInProgress, ResultPassed, ResultFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the session has been graded.
func (s ResultStatus) IsTerminal() bool {
	return s == ResultPassed || s == ResultFailed
}

// TestResult is one exam session of one student on one test. At most one
// in_progress row may exist per (student, test); a partial unique index
// enforces this (see pkg.InitDatabase).
type TestResult struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	StudentID   uint         `json:"student_id" gorm:"not null;index:idx_results_student_test"`
	TestID      uint         `json:"test_id" gorm:"not null;index:idx_results_student_test"`
	Score       int          `json:"score" gorm:"default:0"`
	MaxScore    int          `json:"max_score" gorm:"not null;default:50"`
	Percentage  float64      `json:"percentage" gorm:"default:0"`
	Status      ResultStatus `json:"status" gorm:"size:20;not null;default:'in_progress';index"`
	StartedAt   time.Time    `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`

	// CanRetake unblocks a fresh session after this one is graded. Set only
	// by a staff grant, which also records the grantor.
	CanRetake       bool    `json:"can_retake" gorm:"default:false"`
	RetakeGrantedBy *string `json:"retake_granted_by,omitempty" gorm:"size:255"`

	// SessionData holds the sampled question IDs and client metadata for the
	// session, in sampling order.
	SessionData datatypes.JSON `json:"session_data,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Student *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Test    *Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Granter *User           `json:"granter,omitempty" gorm:"foreignKey:RetakeGrantedBy"`
	Answers []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// IsBlocking reports whether this session forbids starting a new one.
// An in_progress session is resumed instead, so it never blocks.
func (r *TestResult) IsBlocking() bool {
	return r.Status.IsTerminal() && !r.CanRetake
}

// StudentAnswer records the selected option for one sampled question.
// Rows exist only for question IDs that belong to the session's test.
type StudentAnswer struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	ResultID       uint         `json:"result_id" gorm:"not null;index"`
	QuestionID     uint         `json:"question_id" gorm:"not null;index"`
	SelectedAnswer AnswerLetter `json:"selected_answer" gorm:"size:1;not null"`
	IsCorrect      bool         `json:"is_correct" gorm:"default:false"`
	AnsweredAt     time.Time    `json:"answered_at"`

	// Relationships
	Result   *TestResult `json:"-" gorm:"foreignKey:ResultID"`
	Question *Question   `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}
