package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/events"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type examSessionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	now func() time.Time
}

func NewExamSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ExamSessionService {
	return &examSessionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// Start opens a new exam session or resumes the one already in progress.
// The sampled question set is fixed at session creation and survives
// disconnects through the stored session metadata.
func (s *examSessionService) Start(ctx context.Context, testID uint, userID string, isMobile bool) (*SessionResponse, error) {
	s.logger.Info("Starting exam session",
		"test_id", testID,
		"user_id", userID,
		"mobile", isMobile)

	student, err := s.resolveStudent(ctx, userID)
	if err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByIDWithDetails(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if err := checkStartEligibility(test, s.now(), isMobile); err != nil {
		return nil, err
	}

	if err := s.checkAssignment(ctx, test, student); err != nil {
		return nil, err
	}

	cameraRequired := resolveCameraRequired(student.CameraMode, func() (string, error) {
		return s.repo.Setting().Get(ctx, s.db, models.SettingCameraRequiredGlobally)
	})

	var session *models.TestResult
	var resumed bool

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		existing, err := txRepo.Result().GetActiveSession(ctx, nil, student.ID, test.ID)
		if err == nil {
			session = existing
			resumed = true
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check active session: %w", err)
		}

		if _, err := txRepo.Result().GetBlocking(ctx, nil, student.ID, test.ID); err == nil {
			return ErrTestAlreadyTaken
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check previous sessions: %w", err)
		}

		bankIDs, err := txRepo.Question().GetIDsByTest(ctx, nil, test.ID)
		if err != nil {
			return fmt.Errorf("failed to load question bank: %w", err)
		}
		if len(bankIDs) == 0 {
			return ErrTestHasNoQuestions
		}

		sampled := sampleQuestionIDs(bankIDs, test.QuestionCount)

		meta := sessionMetadata{
			QuestionIDs:    sampled,
			CameraRequired: cameraRequired,
			Mobile:         isMobile,
		}
		sessionData, err := meta.marshal()
		if err != nil {
			return err
		}

		session = &models.TestResult{
			StudentID:   student.ID,
			TestID:      test.ID,
			MaxScore:    models.FixedMaxScore,
			Status:      models.ResultInProgress,
			StartedAt:   s.now(),
			SessionData: sessionData,
		}
		return txRepo.Result().Create(ctx, nil, session)
	})
	if err != nil {
		// A concurrent Start may have won the unique index race; resume
		// the session it created.
		if active, retryErr := s.repo.Result().GetActiveSession(ctx, s.db, student.ID, test.ID); retryErr == nil {
			session = active
			resumed = true
		} else {
			return nil, err
		}
	}

	if resumed {
		s.logger.Info("Resuming exam session",
			"result_id", session.ID,
			"test_id", test.ID,
			"student_id", student.ID)
	} else {
		s.logger.Info("Exam session started",
			"result_id", session.ID,
			"test_id", test.ID,
			"student_id", student.ID)
	}

	return s.buildSessionResponse(ctx, test, session, resumed)
}

// Submit grades the active session. The row lock makes concurrent submits
// of the same session serialize; the loser observes a terminal status.
func (s *examSessionService) Submit(ctx context.Context, testID uint, req *validator.SubmitSessionRequest, userID string) (*ResultResponse, error) {
	s.logger.Info("Submitting exam session",
		"test_id", testID,
		"user_id", userID,
		"answers_count", len(req.Answers))

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	student, err := s.resolveStudent(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.Result().GetActiveSession(ctx, s.db, student.ID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, s.classifyMissingSession(ctx, student.ID, testID)
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	var outcome GradeOutcome
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		locked, err := txRepo.Result().GetByIDForUpdate(ctx, nil, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}

		if locked.Status != models.ResultInProgress {
			return ErrSessionAlreadySubmitted
		}

		bank, err := txRepo.Question().GetByTest(ctx, nil, testID)
		if err != nil {
			return fmt.Errorf("failed to load question bank: %w", err)
		}

		correct := make(map[uint]models.AnswerLetter, len(bank))
		for _, question := range bank {
			correct[question.ID] = question.CorrectAnswer
		}

		inputs := make([]AnswerInput, 0, len(req.Answers))
		for _, answer := range req.Answers {
			inputs = append(inputs, AnswerInput{
				QuestionID: answer.QuestionID,
				Selected:   models.AnswerLetter(answer.SelectedAnswer),
			})
		}

		outcome = gradeSubmission(correct, inputs, test.EffectivePassingScore())

		completedAt := s.now()
		locked.Score = outcome.Score
		locked.MaxScore = outcome.MaxScore
		locked.Percentage = outcome.Percentage
		locked.Status = outcome.Status
		locked.CompletedAt = &completedAt

		if err := txRepo.Result().Update(ctx, nil, locked); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		answers := make([]*models.StudentAnswer, 0, len(outcome.Answers))
		for _, graded := range outcome.Answers {
			answers = append(answers, &models.StudentAnswer{
				ResultID:       locked.ID,
				QuestionID:     graded.QuestionID,
				SelectedAnswer: graded.Selected,
				IsCorrect:      graded.IsCorrect,
				AnsweredAt:     completedAt,
			})
		}
		if err := txRepo.Answer().CreateBatch(ctx, nil, answers); err != nil {
			return fmt.Errorf("failed to record answers: %w", err)
		}

		session = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exam session submitted",
		"result_id", session.ID,
		"test_id", testID,
		"student_id", student.ID,
		"score", session.Score,
		"status", session.Status)

	s.publishSessionCompleted(ctx, session)

	response := buildResultResponse(session)
	response.TestTitle = test.Title
	response.StudentName = student.FullName
	response.CorrectCount = outcome.CorrectCount
	response.AnsweredCount = len(outcome.Answers)
	return response, nil
}

// GetActive returns the caller's in_progress session for the test.
func (s *examSessionService) GetActive(ctx context.Context, testID uint, userID string) (*SessionResponse, error) {
	student, err := s.resolveStudent(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.Result().GetActiveSession(ctx, s.db, student.ID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotStarted
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	return s.buildSessionResponse(ctx, test, session, true)
}

// publishSessionCompleted runs after the grading transaction commits.
// Event failures are logged, never surfaced to the student.
func (s *examSessionService) publishSessionCompleted(ctx context.Context, session *models.TestResult) {
	if s.publisher == nil || session.CompletedAt == nil {
		return
	}

	event := events.NewEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		ResultID:    session.ID,
		StudentID:   session.StudentID,
		TestID:      session.TestID,
		Score:       session.Score,
		MaxScore:    session.MaxScore,
		Percentage:  session.Percentage,
		Status:      string(session.Status),
		CompletedAt: *session.CompletedAt,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish session completed event",
			"result_id", session.ID,
			"error", err)
	}
}

// classifyMissingSession distinguishes "never started" from "already
// submitted" when no in_progress row exists.
func (s *examSessionService) classifyMissingSession(ctx context.Context, studentID, testID uint) error {
	if _, err := s.repo.Result().GetBlocking(ctx, s.db, studentID, testID); err == nil {
		return ErrSessionAlreadySubmitted
	} else if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check previous sessions: %w", err)
	}
	return ErrSessionNotStarted
}

func (s *examSessionService) resolveStudent(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.Student().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoStudentProfile
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	if student.Status != models.StudentActive {
		return nil, ErrStudentNotActive
	}
	return student, nil
}

func (s *examSessionService) checkAssignment(ctx context.Context, test *models.Test, student *models.Student) error {
	if student.GroupID == nil {
		return ErrTestNotAssigned
	}

	assigned, err := s.repo.Test().IsAssignedToGroup(ctx, s.db, test.ID, *student.GroupID)
	if err != nil {
		return fmt.Errorf("failed to check test assignment: %w", err)
	}
	if !assigned {
		return ErrTestNotAssigned
	}
	return nil
}

var errSessionCorrupted = errors.New("session metadata unreadable")
