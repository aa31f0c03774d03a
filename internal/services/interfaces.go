package services

import (
	"context"
	"io"
	"time"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

// Requester identifies the authenticated caller for role-aware operations.
type Requester struct {
	UserID string
	Role   models.UserRole
}

func (r Requester) IsStaff() bool {
	return r.Role.IsStaff()
}

// ===== EXAM SESSION DTOS =====

// SessionQuestion is a sampled question as shown to the student. The
// correct answer never leaves the server.
type SessionQuestion struct {
	ID      uint   `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
	Points  int    `json:"points"`
}

// SessionResponse is returned by Start for both fresh and resumed sessions.
type SessionResponse struct {
	ResultID       uint              `json:"result_id"`
	TestID         uint              `json:"test_id"`
	TestTitle      string            `json:"test_title"`
	Duration       int               `json:"duration"`
	StartedAt      time.Time         `json:"started_at"`
	DeadlineAt     time.Time         `json:"deadline_at"`
	Resumed        bool              `json:"resumed"`
	CameraRequired bool              `json:"camera_required"`
	Questions      []SessionQuestion `json:"questions"`
}

// ResultResponse is the graded view of a session.
type ResultResponse struct {
	ID                uint                `json:"id"`
	TestID            uint                `json:"test_id"`
	TestTitle         string              `json:"test_title,omitempty"`
	StudentID         uint                `json:"student_id"`
	StudentName       string              `json:"student_name,omitempty"`
	Score             int                 `json:"score"`
	MaxScore          int                 `json:"max_score"`
	Percentage        float64             `json:"percentage"`
	RoundedPercentage int                 `json:"rounded_percentage"`
	Status            models.ResultStatus `json:"status"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	CanRetake         bool                `json:"can_retake"`
	RetakeGrantedBy   *string             `json:"retake_granted_by,omitempty"`
	CorrectCount      int                 `json:"correct_count,omitempty"`
	AnsweredCount     int                 `json:"answered_count,omitempty"`
}

// ===== TEST DTOS =====

type TestResponse struct {
	ID                uint              `json:"id"`
	Title             string            `json:"title"`
	Description       *string           `json:"description,omitempty"`
	SubjectID         uint              `json:"subject_id"`
	SubjectName       string            `json:"subject_name,omitempty"`
	QuestionCount     int               `json:"question_count"`
	Duration          int               `json:"duration"`
	MaxScore          int               `json:"max_score"`
	PassingScore      int               `json:"passing_score"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	Status            models.TestStatus `json:"status"`
	AllowMobileAccess bool              `json:"allow_mobile_access"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	Groups            []models.Group    `json:"groups,omitempty"`
	BankSize          int64             `json:"bank_size,omitempty"`
}

type TestListResponse struct {
	Tests []*TestResponse `json:"tests"`
	Total int64           `json:"total"`
}

// ===== QUESTION DTOS =====

// QuestionResponse is the staff view of a question, correct answer included.
type QuestionResponse struct {
	ID            uint                `json:"id"`
	TestID        uint                `json:"test_id"`
	Text          string              `json:"text"`
	OptionA       string              `json:"option_a"`
	OptionB       string              `json:"option_b"`
	OptionC       string              `json:"option_c"`
	OptionD       string              `json:"option_d"`
	CorrectAnswer models.AnswerLetter `json:"correct_answer"`
	Points        int                 `json:"points"`
}

// ImportReport summarizes a bulk question import.
type ImportReport struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ===== RESULT DTOS =====

type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
}

type RetakeGrantResponse struct {
	Granted int64 `json:"granted"`
}

// ===== STUDENT DTOS =====

type StudentResponse struct {
	ID         uint                 `json:"id"`
	UserID     string               `json:"user_id"`
	StudentID  string               `json:"student_id"`
	FullName   string               `json:"full_name"`
	GroupID    *uint                `json:"group_id,omitempty"`
	GroupName  string               `json:"group_name,omitempty"`
	Phone      *string              `json:"phone,omitempty"`
	Status     models.StudentStatus `json:"status"`
	CameraMode models.CameraMode    `json:"camera_mode"`
}

type StudentListResponse struct {
	Students []*StudentResponse `json:"students"`
	Total    int64              `json:"total"`
}

// ===== MONITORING DTOS =====

type MassControlResponse struct {
	Action        string `json:"action"`
	AffectedTests int64  `json:"affected_tests"`
}

// ===== SERVICE INTERFACES =====

// ExamSessionService drives the exam lifecycle of one student on one test.
type ExamSessionService interface {
	// Start opens a new session or resumes the in_progress one.
	Start(ctx context.Context, testID uint, userID string, isMobile bool) (*SessionResponse, error)

	// Submit grades the active session exactly once.
	Submit(ctx context.Context, testID uint, req *validator.SubmitSessionRequest, userID string) (*ResultResponse, error)

	// GetActive returns the caller's in_progress session, if any.
	GetActive(ctx context.Context, testID uint, userID string) (*SessionResponse, error)
}

// TestService manages exam definitions.
type TestService interface {
	Create(ctx context.Context, req *validator.TestCreateRequest, createdBy string) (*TestResponse, error)
	GetByID(ctx context.Context, id uint, requester Requester) (*TestResponse, error)
	Update(ctx context.Context, id uint, req *validator.TestUpdateRequest, requester Requester) (*TestResponse, error)
	Delete(ctx context.Context, id uint, requester Requester) error
	List(ctx context.Context, filters repositories.TestFilters, requester Requester) (*TestListResponse, error)

	// ListForStudent returns active tests assigned to the student's group.
	ListForStudent(ctx context.Context, userID string) (*TestListResponse, error)

	AssignGroups(ctx context.Context, testID uint, groupIDs []uint, requester Requester) error
	UnassignGroup(ctx context.Context, testID, groupID uint, requester Requester) error
	UpdateStatus(ctx context.Context, testID uint, status models.TestStatus, requester Requester) (*TestResponse, error)
	GetStats(ctx context.Context, testID uint, requester Requester) (*repositories.TestStats, error)
}

// QuestionService manages per-test question banks.
type QuestionService interface {
	Create(ctx context.Context, testID uint, req *validator.QuestionCreateRequest, requester Requester) (*QuestionResponse, error)
	Update(ctx context.Context, questionID uint, req *validator.QuestionUpdateRequest, requester Requester) (*QuestionResponse, error)
	Delete(ctx context.Context, questionID uint, requester Requester) error
	GetByTest(ctx context.Context, testID uint, requester Requester) ([]*QuestionResponse, error)

	// ImportExcel bulk-creates questions from a workbook.
	ImportExcel(ctx context.Context, testID uint, r io.Reader, requester Requester) (*ImportReport, error)
}

// ResultService exposes graded sessions and retake grants.
type ResultService interface {
	GetByID(ctx context.Context, id uint, requester Requester) (*ResultResponse, error)
	List(ctx context.Context, filters repositories.ResultFilters, requester Requester) (*ResultListResponse, error)
	GrantRetake(ctx context.Context, resultID uint, requester Requester) (*ResultResponse, error)
	BulkGrantRetake(ctx context.Context, resultIDs []uint, requester Requester) (*RetakeGrantResponse, error)
}

// StudentService manages academic profiles.
type StudentService interface {
	GetProfile(ctx context.Context, userID string) (*StudentResponse, error)
	GetByID(ctx context.Context, id uint, requester Requester) (*StudentResponse, error)
	Update(ctx context.Context, id uint, req *validator.StudentUpdateRequest, requester Requester) (*StudentResponse, error)
	List(ctx context.Context, filters repositories.StudentFilters, requester Requester) (*StudentListResponse, error)
}

// MonitoringService covers mass control, global settings and the dashboard.
type MonitoringService interface {
	Dashboard(ctx context.Context, requester Requester) (*repositories.DashboardStats, error)

	PauseAll(ctx context.Context, requester Requester) (*MassControlResponse, error)
	ResumeAll(ctx context.Context, requester Requester) (*MassControlResponse, error)
	ExtendTime(ctx context.Context, minutes int, requester Requester) (*MassControlResponse, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key string, req *validator.SettingUpdateRequest, requester Requester) error
	ListSettings(ctx context.Context, requester Requester) ([]*models.GlobalSetting, error)
}

// ServiceManager provides access to all services with lifecycle management.
type ServiceManager interface {
	Session() ExamSessionService
	Test() TestService
	Question() QuestionService
	Result() ResultService
	Student() StudentService
	Monitoring() MonitoringService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
