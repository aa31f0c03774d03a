package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/hemis-edu/exam-service/internal/models"
)

// sessionMetadata is persisted in TestResult.SessionData so the sampled
// question set and start-time decisions survive reconnects.
type sessionMetadata struct {
	QuestionIDs    []uint `json:"question_ids"`
	CameraRequired bool   `json:"camera_required"`
	Mobile         bool   `json:"mobile"`
}

func (m sessionMetadata) marshal() (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func parseSessionMetadata(data datatypes.JSON) (sessionMetadata, error) {
	var meta sessionMetadata
	if len(data) == 0 {
		return meta, errSessionCorrupted
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, errSessionCorrupted
	}
	return meta, nil
}

// checkStartEligibility enforces the status, time window and mobile guards.
// Both window boundaries are inclusive.
func checkStartEligibility(test *models.Test, now time.Time, isMobile bool) error {
	if test.Status != models.TestActive {
		return ErrTestNotActive
	}
	if now.Before(test.StartDate) {
		return ErrTestNotOpenYet
	}
	if now.After(test.EndDate) {
		return ErrTestExpired
	}
	if isMobile && !test.AllowMobileAccess {
		return ErrMobileNotAllowed
	}
	return nil
}

// resolveCameraRequired applies the per-student camera mode, falling back
// to the global setting. A missing or unreadable setting means no camera.
func resolveCameraRequired(mode models.CameraMode, globalSetting func() (string, error)) bool {
	switch mode {
	case models.CameraRequired:
		return true
	case models.CameraNotRequired:
		return false
	}

	value, err := globalSetting()
	if err != nil {
		return false
	}
	return value == "true"
}

// sessionDeadline caps the per-session duration at the test window close.
func sessionDeadline(startedAt time.Time, durationMinutes int, windowEnd time.Time) time.Time {
	deadline := startedAt.Add(time.Duration(durationMinutes) * time.Minute)
	if deadline.After(windowEnd) {
		return windowEnd
	}
	return deadline
}

// orderQuestions arranges fetched questions in the sampled order. IDs whose
// question was deleted after sampling are dropped.
func orderQuestions(sampledIDs []uint, questions []*models.Question) []SessionQuestion {
	byID := make(map[uint]*models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	ordered := make([]SessionQuestion, 0, len(sampledIDs))
	for _, id := range sampledIDs {
		question, ok := byID[id]
		if !ok {
			continue
		}
		ordered = append(ordered, SessionQuestion{
			ID:      question.ID,
			Text:    question.Text,
			OptionA: question.OptionA,
			OptionB: question.OptionB,
			OptionC: question.OptionC,
			OptionD: question.OptionD,
			Points:  question.Points,
		})
	}
	return ordered
}

func (s *examSessionService) buildSessionResponse(ctx context.Context, test *models.Test, session *models.TestResult, resumed bool) (*SessionResponse, error) {
	meta, err := parseSessionMetadata(session.SessionData)
	if err != nil {
		s.logger.Error("Session metadata unreadable",
			"result_id", session.ID,
			"error", err)
		return nil, err
	}

	questions, err := s.repo.Question().GetByIDs(ctx, s.db, meta.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session questions: %w", err)
	}

	return &SessionResponse{
		ResultID:       session.ID,
		TestID:         test.ID,
		TestTitle:      test.Title,
		Duration:       test.Duration,
		StartedAt:      session.StartedAt,
		DeadlineAt:     sessionDeadline(session.StartedAt, test.Duration, test.EndDate),
		Resumed:        resumed,
		CameraRequired: meta.CameraRequired,
		Questions:      orderQuestions(meta.QuestionIDs, questions),
	}, nil
}

func buildResultResponse(result *models.TestResult) *ResultResponse {
	response := &ResultResponse{
		ID:                result.ID,
		TestID:            result.TestID,
		StudentID:         result.StudentID,
		Score:             result.Score,
		MaxScore:          result.MaxScore,
		Percentage:        result.Percentage,
		RoundedPercentage: roundPercentage(result.Percentage),
		Status:            result.Status,
		StartedAt:         result.StartedAt,
		CompletedAt:       result.CompletedAt,
		CanRetake:         result.CanRetake,
		RetakeGrantedBy:   result.RetakeGrantedBy,
	}

	if result.Test != nil {
		response.TestTitle = result.Test.Title
	}
	if result.Student != nil {
		response.StudentName = result.Student.FullName
	}
	return response
}
