package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/events"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

// Mocks implement only the methods the session flow touches; the embedded
// interfaces make everything else panic loudly if reached.

type mockRepo struct {
	repositories.Repository
	test    *mockTestRepo
	quest   *mockQuestionRepo
	result  *mockResultRepo
	answer  *mockAnswerRepo
	student *mockStudentRepo
	setting *mockSettingRepo
}

func (m *mockRepo) Test() repositories.TestRepository { return m.test }

func (m *mockRepo) Question() repositories.QuestionRepository { return m.quest }

func (m *mockRepo) Result() repositories.ResultRepository { return m.result }

func (m *mockRepo) Answer() repositories.AnswerRepository { return m.answer }

func (m *mockRepo) Student() repositories.StudentRepository { return m.student }

func (m *mockRepo) Setting() repositories.SettingRepository { return m.setting }

func (m *mockRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepo) Ping(ctx context.Context) error { return nil }

type mockTestRepo struct {
	repositories.TestRepository
	tests    map[uint]*models.Test
	assigned map[uint]map[uint]bool
}

func (m *mockTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	test, ok := m.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return test, nil
}

func (m *mockTestRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *mockTestRepo) IsAssignedToGroup(ctx context.Context, tx *gorm.DB, testID, groupID uint) (bool, error) {
	return m.assigned[testID][groupID], nil
}

type mockQuestionRepo struct {
	repositories.QuestionRepository
	questions []*models.Question
}

func (m *mockQuestionRepo) GetIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error) {
	var ids []uint
	for _, q := range m.questions {
		if q.TestID == testID {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}

func (m *mockQuestionRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, q := range m.questions {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.Question
	for _, q := range m.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

type mockResultRepo struct {
	repositories.ResultRepository
	results map[uint]*models.TestResult
	nextID  uint
}

func (m *mockResultRepo) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	m.nextID++
	result.ID = m.nextID
	m.results[result.ID] = result
	return nil
}

func (m *mockResultRepo) Update(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	m.results[result.ID] = result
	return nil
}

func (m *mockResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) {
	result, ok := m.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (m *mockResultRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TestResult, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *mockResultRepo) GetActiveSession(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	for _, r := range m.results {
		if r.StudentID == studentID && r.TestID == testID && r.Status == models.ResultInProgress {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResultRepo) GetBlocking(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	for _, r := range m.results {
		if r.StudentID == studentID && r.TestID == testID && r.IsBlocking() {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockAnswerRepo struct {
	repositories.AnswerRepository
	saved []*models.StudentAnswer
}

func (m *mockAnswerRepo) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	m.saved = append(m.saved, answers...)
	return nil
}

type mockStudentRepo struct {
	repositories.StudentRepository
	students map[string]*models.Student
}

func (m *mockStudentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	student, ok := m.students[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

type mockSettingRepo struct {
	repositories.SettingRepository
	values map[string]string
}

func (m *mockSettingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return value, nil
}

type sessionFixture struct {
	repo      *mockRepo
	publisher *events.MockEventPublisher
	service   ExamSessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	groupID := uint(10)
	now := time.Now()

	repo := &mockRepo{
		test: &mockTestRepo{
			tests: map[uint]*models.Test{
				1: {
					ID:                1,
					Title:             "Algorithms midterm",
					QuestionCount:     25,
					Duration:          60,
					MaxScore:          models.FixedMaxScore,
					PassingScore:      models.DefaultPassingScore,
					StartDate:         now.Add(-time.Hour),
					EndDate:           now.Add(time.Hour),
					Status:            models.TestActive,
					AllowMobileAccess: true,
				},
			},
			assigned: map[uint]map[uint]bool{1: {groupID: true}},
		},
		quest:   &mockQuestionRepo{},
		result:  &mockResultRepo{results: map[uint]*models.TestResult{}},
		answer:  &mockAnswerRepo{},
		student: &mockStudentRepo{students: map[string]*models.Student{}},
		setting: &mockSettingRepo{values: map[string]string{}},
	}

	repo.student.students["user-1"] = &models.Student{
		ID:         100,
		UserID:     "user-1",
		StudentID:  "S-100",
		FullName:   "Test Student",
		GroupID:    &groupID,
		Status:     models.StudentActive,
		CameraMode: models.CameraDefault,
	}

	for i := uint(1); i <= 40; i++ {
		repo.quest.questions = append(repo.quest.questions, &models.Question{
			ID:            i,
			TestID:        1,
			Text:          "question",
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectAnswer: models.LetterA,
			Points:        models.PointsPerQuestion,
		})
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)

	return &sessionFixture{
		repo:      repo,
		publisher: publisher,
		service:   NewExamSessionService(repo, nil, logger, validator.New(), publisher),
	}
}

func TestExamSessionStart(t *testing.T) {
	ctx := context.Background()

	t.Run("starts a fresh session with sampled questions", func(t *testing.T) {
		f := newSessionFixture(t)

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Resumed {
			t.Error("fresh session must not be marked resumed")
		}
		if len(session.Questions) != 25 {
			t.Errorf("expected 25 sampled questions, got %d", len(session.Questions))
		}
		if session.CameraRequired {
			t.Error("camera must be off with default mode and no global setting")
		}
	})

	t.Run("resumes the session in progress", func(t *testing.T) {
		f := newSessionFixture(t)

		first, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		second, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error on resume: %v", err)
		}
		if !second.Resumed {
			t.Error("second start must resume")
		}
		if second.ResultID != first.ResultID {
			t.Errorf("resume returned a different session: %d vs %d", second.ResultID, first.ResultID)
		}
		if !second.StartedAt.Equal(first.StartedAt) {
			t.Error("resume must preserve the original start time")
		}
		if len(second.Questions) != len(first.Questions) {
			t.Errorf("resume changed the question set size: %d vs %d", len(second.Questions), len(first.Questions))
		}
		if second.Questions[0].ID != first.Questions[0].ID {
			t.Error("resume must preserve the sampled order")
		}
	})

	t.Run("terminal session without retake blocks a new start", func(t *testing.T) {
		f := newSessionFixture(t)
		f.repo.result.results[1] = &models.TestResult{
			ID: 1, StudentID: 100, TestID: 1,
			Status: models.ResultFailed,
		}

		_, err := f.service.Start(ctx, 1, "user-1", false)
		if !errors.Is(err, ErrTestAlreadyTaken) {
			t.Errorf("expected ErrTestAlreadyTaken, got %v", err)
		}
	})

	t.Run("retake grant unblocks a new start", func(t *testing.T) {
		f := newSessionFixture(t)
		f.repo.result.results[1] = &models.TestResult{
			ID: 1, StudentID: 100, TestID: 1,
			Status: models.ResultFailed, CanRetake: true,
		}
		f.repo.result.nextID = 1

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.ResultID == 1 {
			t.Error("expected a fresh session, not the old one")
		}
	})

	t.Run("unknown account has no profile", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.service.Start(ctx, 1, "stranger", false)
		if !errors.Is(err, ErrNoStudentProfile) {
			t.Errorf("expected ErrNoStudentProfile, got %v", err)
		}
	})

	t.Run("unassigned group cannot start", func(t *testing.T) {
		f := newSessionFixture(t)
		f.repo.test.assigned = map[uint]map[uint]bool{}

		_, err := f.service.Start(ctx, 1, "user-1", false)
		if !errors.Is(err, ErrTestNotAssigned) {
			t.Errorf("expected ErrTestNotAssigned, got %v", err)
		}
	})

	t.Run("mobile blocked when the test forbids it", func(t *testing.T) {
		f := newSessionFixture(t)
		f.repo.test.tests[1].AllowMobileAccess = false

		_, err := f.service.Start(ctx, 1, "user-1", true)
		if !errors.Is(err, ErrMobileNotAllowed) {
			t.Errorf("expected ErrMobileNotAllowed, got %v", err)
		}
	})

	t.Run("global camera setting applies to default mode", func(t *testing.T) {
		f := newSessionFixture(t)
		f.repo.setting.values[models.SettingCameraRequiredGlobally] = "true"

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !session.CameraRequired {
			t.Error("expected camera required from the global setting")
		}
	})
}

func TestExamSessionSubmit(t *testing.T) {
	ctx := context.Background()

	answersFor := func(session *SessionResponse, correct int) *validator.SubmitSessionRequest {
		req := &validator.SubmitSessionRequest{}
		for i, question := range session.Questions {
			letter := "A"
			if i >= correct {
				letter = "B"
			}
			req.Answers = append(req.Answers, validator.AnswerSubmission{
				QuestionID:     question.ID,
				SelectedAnswer: letter,
			})
		}
		return req
	}

	t.Run("grades and publishes a completion event", func(t *testing.T) {
		f := newSessionFixture(t)

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}

		result, err := f.service.Submit(ctx, 1, answersFor(session, 15), "user-1")
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		if result.Score != 30 {
			t.Errorf("expected score 30, got %d", result.Score)
		}
		if result.Status != models.ResultPassed {
			t.Errorf("expected passed, got %s", result.Status)
		}
		if result.RoundedPercentage != 60 {
			t.Errorf("expected rounded percentage 60, got %d", result.RoundedPercentage)
		}
		if result.CompletedAt == nil {
			t.Error("expected a completion timestamp")
		}
		if len(f.repo.answer.saved) != 25 {
			t.Errorf("expected 25 recorded answers, got %d", len(f.repo.answer.saved))
		}

		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventSessionCompleted {
			t.Errorf("expected %s, got %s", events.EventSessionCompleted, published[0].Type)
		}
	})

	t.Run("second submit is rejected", func(t *testing.T) {
		f := newSessionFixture(t)

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if _, err := f.service.Submit(ctx, 1, answersFor(session, 10), "user-1"); err != nil {
			t.Fatalf("first submit failed: %v", err)
		}

		_, err = f.service.Submit(ctx, 1, &validator.SubmitSessionRequest{}, "user-1")
		if !errors.Is(err, ErrSessionAlreadySubmitted) {
			t.Errorf("expected ErrSessionAlreadySubmitted, got %v", err)
		}
	})

	t.Run("submit without a session", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.service.Submit(ctx, 1, &validator.SubmitSessionRequest{}, "user-1")
		if !errors.Is(err, ErrSessionNotStarted) {
			t.Errorf("expected ErrSessionNotStarted, got %v", err)
		}
	})

	t.Run("publish failure does not fail the submit", func(t *testing.T) {
		f := newSessionFixture(t)
		f.publisher.FailNext = errors.New("broker down")

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if _, err := f.service.Submit(ctx, 1, answersFor(session, 5), "user-1"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	})

	t.Run("failed retake submission", func(t *testing.T) {
		f := newSessionFixture(t)

		session, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}

		result, err := f.service.Submit(ctx, 1, answersFor(session, 14), "user-1")
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if result.Status != models.ResultFailed {
			t.Errorf("expected failed, got %s", result.Status)
		}

		// The failed terminal session now blocks a restart.
		_, err = f.service.Start(ctx, 1, "user-1", false)
		if !errors.Is(err, ErrTestAlreadyTaken) {
			t.Errorf("expected ErrTestAlreadyTaken, got %v", err)
		}
	})
}

func TestExamSessionGetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the running session", func(t *testing.T) {
		f := newSessionFixture(t)

		started, err := f.service.Start(ctx, 1, "user-1", false)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}

		active, err := f.service.GetActive(ctx, 1, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if active.ResultID != started.ResultID {
			t.Errorf("expected session %d, got %d", started.ResultID, active.ResultID)
		}
		if !active.Resumed {
			t.Error("active session view is always a resume")
		}
	})

	t.Run("no session in progress", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.service.GetActive(ctx, 1, "user-1")
		if !errors.Is(err, ErrSessionNotStarted) {
			t.Errorf("expected ErrSessionNotStarted, got %v", err)
		}
	})
}
