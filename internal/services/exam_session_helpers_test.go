package services

import (
	"errors"
	"testing"
	"time"

	"github.com/hemis-edu/exam-service/internal/models"
)

func windowTest(status models.TestStatus, start, end time.Time) *models.Test {
	return &models.Test{
		ID:                1,
		Status:            status,
		StartDate:         start,
		EndDate:           end,
		AllowMobileAccess: true,
	}
}

func TestCheckStartEligibility(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	t.Run("active test inside window is allowed", func(t *testing.T) {
		if err := checkStartEligibility(windowTest(models.TestActive, start, end), now, false); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("inactive statuses are rejected", func(t *testing.T) {
		for _, status := range []models.TestStatus{models.TestScheduled, models.TestPaused, models.TestCompleted} {
			err := checkStartEligibility(windowTest(status, start, end), now, false)
			if !errors.Is(err, ErrTestNotActive) {
				t.Errorf("status %s: expected ErrTestNotActive, got %v", status, err)
			}
		}
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		test := windowTest(models.TestActive, start, end)
		if err := checkStartEligibility(test, start, false); err != nil {
			t.Errorf("start boundary: unexpected error %v", err)
		}
		if err := checkStartEligibility(test, end, false); err != nil {
			t.Errorf("end boundary: unexpected error %v", err)
		}
	})

	t.Run("before the window", func(t *testing.T) {
		err := checkStartEligibility(windowTest(models.TestActive, start, end), start.Add(-time.Second), false)
		if !errors.Is(err, ErrTestNotOpenYet) {
			t.Errorf("expected ErrTestNotOpenYet, got %v", err)
		}
	})

	t.Run("after the window", func(t *testing.T) {
		err := checkStartEligibility(windowTest(models.TestActive, start, end), end.Add(time.Second), false)
		if !errors.Is(err, ErrTestExpired) {
			t.Errorf("expected ErrTestExpired, got %v", err)
		}
	})

	t.Run("mobile blocked when the test forbids it", func(t *testing.T) {
		test := windowTest(models.TestActive, start, end)
		test.AllowMobileAccess = false

		err := checkStartEligibility(test, now, true)
		if !errors.Is(err, ErrMobileNotAllowed) {
			t.Errorf("expected ErrMobileNotAllowed, got %v", err)
		}
		if err := checkStartEligibility(test, now, false); err != nil {
			t.Errorf("desktop should pass, got %v", err)
		}
	})
}

func TestResolveCameraRequired(t *testing.T) {
	globalOn := func() (string, error) { return "true", nil }
	globalOff := func() (string, error) { return "false", nil }
	globalMissing := func() (string, error) { return "", ErrSettingNotFound }

	cases := []struct {
		name   string
		mode   models.CameraMode
		global func() (string, error)
		want   bool
	}{
		{"required overrides global off", models.CameraRequired, globalOff, true},
		{"not_required overrides global on", models.CameraNotRequired, globalOn, false},
		{"default follows global on", models.CameraDefault, globalOn, true},
		{"default follows global off", models.CameraDefault, globalOff, false},
		{"default with missing setting means off", models.CameraDefault, globalMissing, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveCameraRequired(tc.mode, tc.global); got != tc.want {
				t.Errorf("resolveCameraRequired(%s) = %v, want %v", tc.mode, got, tc.want)
			}
		})
	}
}

func TestSessionDeadline(t *testing.T) {
	startedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("duration fits inside the window", func(t *testing.T) {
		windowEnd := startedAt.Add(3 * time.Hour)
		got := sessionDeadline(startedAt, 60, windowEnd)
		if want := startedAt.Add(time.Hour); !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("window close caps the deadline", func(t *testing.T) {
		windowEnd := startedAt.Add(30 * time.Minute)
		got := sessionDeadline(startedAt, 60, windowEnd)
		if !got.Equal(windowEnd) {
			t.Errorf("expected %v, got %v", windowEnd, got)
		}
	})
}

func TestSessionMetadataRoundTrip(t *testing.T) {
	meta := sessionMetadata{
		QuestionIDs:    []uint{7, 3, 12},
		CameraRequired: true,
		Mobile:         true,
	}

	data, err := meta.marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	parsed, err := parseSessionMetadata(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(parsed.QuestionIDs) != 3 || parsed.QuestionIDs[0] != 7 {
		t.Errorf("question IDs not preserved: %v", parsed.QuestionIDs)
	}
	if !parsed.CameraRequired || !parsed.Mobile {
		t.Errorf("flags not preserved: %+v", parsed)
	}
}

func TestParseSessionMetadataCorrupted(t *testing.T) {
	if _, err := parseSessionMetadata(nil); !errors.Is(err, errSessionCorrupted) {
		t.Errorf("empty data: expected errSessionCorrupted, got %v", err)
	}
	if _, err := parseSessionMetadata([]byte("not json")); !errors.Is(err, errSessionCorrupted) {
		t.Errorf("garbage data: expected errSessionCorrupted, got %v", err)
	}
}

func TestOrderQuestions(t *testing.T) {
	questions := []*models.Question{
		{ID: 3, Text: "three"},
		{ID: 7, Text: "seven"},
		{ID: 12, Text: "twelve"},
	}

	ordered := orderQuestions([]uint{12, 3, 7}, questions)

	if len(ordered) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(ordered))
	}
	if ordered[0].ID != 12 || ordered[1].ID != 3 || ordered[2].ID != 7 {
		t.Errorf("sampling order not preserved: %v %v %v", ordered[0].ID, ordered[1].ID, ordered[2].ID)
	}

	t.Run("deleted questions are dropped", func(t *testing.T) {
		ordered := orderQuestions([]uint{12, 99, 3}, questions)
		if len(ordered) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(ordered))
		}
	})
}
