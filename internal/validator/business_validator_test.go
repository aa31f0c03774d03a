package validator

import (
	"testing"
	"time"

	"github.com/hemis-edu/exam-service/internal/models"
)

func validCreateRequest() *TestCreateRequest {
	return &TestCreateRequest{
		Title:     "Midterm exam",
		SubjectID: 1,
		Duration:  60,
		StartDate: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
	}
}

func TestValidateTestCreate(t *testing.T) {
	v := New()

	t.Run("valid request passes", func(t *testing.T) {
		if errs := v.ValidateTestCreate(validCreateRequest()); len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("end date must be after start date", func(t *testing.T) {
		req := validCreateRequest()
		req.EndDate = req.StartDate

		errs := v.ValidateTestCreate(req)
		if len(errs) == 0 {
			t.Fatal("expected an error")
		}
		if errs[0].Field != "end_date" {
			t.Errorf("expected end_date error, got %s", errs[0].Field)
		}
	})

	t.Run("duration outside range is rejected", func(t *testing.T) {
		for _, duration := range []int{4, 301} {
			req := validCreateRequest()
			req.Duration = duration
			if errs := v.ValidateTestCreate(req); len(errs) == 0 {
				t.Errorf("duration %d: expected an error", duration)
			}
		}
	})

	t.Run("passing score above the fixed maximum is rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.PassingScore = models.FixedMaxScore + 1
		if errs := v.ValidateTestCreate(req); len(errs) == 0 {
			t.Error("expected an error")
		}
	})
}

func TestValidateTestUpdate(t *testing.T) {
	v := New()
	existing := &models.Test{
		Status:       models.TestActive,
		PassingScore: 30,
		StartDate:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
	}

	t.Run("passing score frozen while active", func(t *testing.T) {
		score := 40
		errs := v.ValidateTestUpdate(&TestUpdateRequest{PassingScore: &score}, existing)
		if len(errs) == 0 {
			t.Fatal("expected an error")
		}
		if errs[0].Field != "passing_score" {
			t.Errorf("expected passing_score error, got %s", errs[0].Field)
		}
	})

	t.Run("unchanged passing score is fine", func(t *testing.T) {
		score := 30
		if errs := v.ValidateTestUpdate(&TestUpdateRequest{PassingScore: &score}, existing); len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("merged dates must stay ordered", func(t *testing.T) {
		badEnd := existing.StartDate.Add(-time.Hour)
		errs := v.ValidateTestUpdate(&TestUpdateRequest{EndDate: &badEnd}, existing)
		if len(errs) == 0 {
			t.Fatal("expected an error")
		}
	})
}

func TestValidateStatusTransition(t *testing.T) {
	v := New()

	allowed := []struct{ from, to models.TestStatus }{
		{models.TestScheduled, models.TestActive},
		{models.TestScheduled, models.TestCompleted},
		{models.TestActive, models.TestPaused},
		{models.TestActive, models.TestCompleted},
		{models.TestPaused, models.TestActive},
		{models.TestPaused, models.TestCompleted},
	}
	for _, tc := range allowed {
		if errs := v.ValidateStatusTransition(tc.from, tc.to); len(errs) > 0 {
			t.Errorf("%s -> %s should be allowed: %v", tc.from, tc.to, errs)
		}
	}

	forbidden := []struct{ from, to models.TestStatus }{
		{models.TestCompleted, models.TestActive},
		{models.TestCompleted, models.TestScheduled},
		{models.TestActive, models.TestScheduled},
		{models.TestPaused, models.TestScheduled},
	}
	for _, tc := range forbidden {
		if errs := v.ValidateStatusTransition(tc.from, tc.to); len(errs) == 0 {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestValidateSubmitSessionRequest(t *testing.T) {
	v := New()

	t.Run("valid answers pass", func(t *testing.T) {
		req := &SubmitSessionRequest{Answers: []AnswerSubmission{
			{QuestionID: 1, SelectedAnswer: "A"},
			{QuestionID: 2, SelectedAnswer: "D"},
		}}
		if errs := v.Validate(req); len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("empty submission is allowed", func(t *testing.T) {
		if errs := v.Validate(&SubmitSessionRequest{}); len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("invalid letter is rejected", func(t *testing.T) {
		req := &SubmitSessionRequest{Answers: []AnswerSubmission{
			{QuestionID: 1, SelectedAnswer: "E"},
		}}
		if errs := v.Validate(req); len(errs) == 0 {
			t.Error("expected an error")
		}
	})
}
