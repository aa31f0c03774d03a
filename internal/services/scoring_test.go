package services

import (
	"testing"

	"github.com/hemis-edu/exam-service/internal/models"
)

func bankOfSize(n int) map[uint]models.AnswerLetter {
	bank := make(map[uint]models.AnswerLetter, n)
	for i := 1; i <= n; i++ {
		bank[uint(i)] = models.LetterA
	}
	return bank
}

func correctAnswers(ids ...uint) []AnswerInput {
	answers := make([]AnswerInput, 0, len(ids))
	for _, id := range ids {
		answers = append(answers, AnswerInput{QuestionID: id, Selected: models.LetterA})
	}
	return answers
}

func TestGradeSubmission(t *testing.T) {
	t.Run("all 25 correct gives full score", func(t *testing.T) {
		bank := bankOfSize(25)
		answers := correctAnswers(rangeIDs(1, 25)...)

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != 50 {
			t.Errorf("expected score 50, got %d", outcome.Score)
		}
		if outcome.Percentage != 100 {
			t.Errorf("expected percentage 100, got %f", outcome.Percentage)
		}
		if outcome.Status != models.ResultPassed {
			t.Errorf("expected passed, got %s", outcome.Status)
		}
	})

	t.Run("15 correct is the lowest pass", func(t *testing.T) {
		bank := bankOfSize(25)
		answers := correctAnswers(rangeIDs(1, 15)...)

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != 30 {
			t.Errorf("expected score 30, got %d", outcome.Score)
		}
		if outcome.Status != models.ResultPassed {
			t.Errorf("expected passed at the threshold, got %s", outcome.Status)
		}
	})

	t.Run("14 correct fails", func(t *testing.T) {
		bank := bankOfSize(25)
		answers := correctAnswers(rangeIDs(1, 14)...)

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != 28 {
			t.Errorf("expected score 28, got %d", outcome.Score)
		}
		if outcome.Status != models.ResultFailed {
			t.Errorf("expected failed, got %s", outcome.Status)
		}
	})

	t.Run("score is clamped to the fixed maximum", func(t *testing.T) {
		bank := bankOfSize(30)
		answers := correctAnswers(rangeIDs(1, 30)...)

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != models.FixedMaxScore {
			t.Errorf("expected clamped score %d, got %d", models.FixedMaxScore, outcome.Score)
		}
		if outcome.Percentage != 100 {
			t.Errorf("expected percentage 100 after clamp, got %f", outcome.Percentage)
		}
	})

	t.Run("unknown question IDs are skipped silently", func(t *testing.T) {
		bank := bankOfSize(5)
		answers := correctAnswers(1, 2, 999, 1000)

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != 4 {
			t.Errorf("expected score 4, got %d", outcome.Score)
		}
		if len(outcome.Answers) != 2 {
			t.Errorf("expected 2 recorded answers, got %d", len(outcome.Answers))
		}
	})

	t.Run("only the first answer per question counts", func(t *testing.T) {
		bank := bankOfSize(5)
		answers := []AnswerInput{
			{QuestionID: 1, Selected: models.LetterB}, // wrong, counted
			{QuestionID: 1, Selected: models.LetterA}, // correct, ignored
		}

		outcome := gradeSubmission(bank, answers, models.DefaultPassingScore)

		if outcome.Score != 0 {
			t.Errorf("expected score 0, got %d", outcome.Score)
		}
		if len(outcome.Answers) != 1 {
			t.Errorf("expected 1 recorded answer, got %d", len(outcome.Answers))
		}
		if outcome.Answers[0].Selected != models.LetterB {
			t.Errorf("expected the first answer to be kept, got %s", outcome.Answers[0].Selected)
		}
	})

	t.Run("empty submission fails with zero score", func(t *testing.T) {
		outcome := gradeSubmission(bankOfSize(25), nil, models.DefaultPassingScore)

		if outcome.Score != 0 {
			t.Errorf("expected score 0, got %d", outcome.Score)
		}
		if outcome.Status != models.ResultFailed {
			t.Errorf("expected failed, got %s", outcome.Status)
		}
		if outcome.Percentage != 0 {
			t.Errorf("expected percentage 0, got %f", outcome.Percentage)
		}
	})

	t.Run("non-positive threshold falls back to the default", func(t *testing.T) {
		bank := bankOfSize(25)
		answers := correctAnswers(rangeIDs(1, 15)...)

		outcome := gradeSubmission(bank, answers, 0)

		if outcome.Status != models.ResultPassed {
			t.Errorf("expected 30 points to pass the default threshold, got %s", outcome.Status)
		}
	})

	t.Run("custom threshold is honored", func(t *testing.T) {
		bank := bankOfSize(25)
		answers := correctAnswers(rangeIDs(1, 20)...)

		outcome := gradeSubmission(bank, answers, 42)

		if outcome.Score != 40 {
			t.Errorf("expected score 40, got %d", outcome.Score)
		}
		if outcome.Status != models.ResultFailed {
			t.Errorf("expected failed below custom threshold, got %s", outcome.Status)
		}
	})
}

func TestRoundPercentage(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{56.0, 56},
		{56.4, 56},
		{56.5, 57},
		{99.9, 100},
	}

	for _, tc := range cases {
		if got := roundPercentage(tc.in); got != tc.want {
			t.Errorf("roundPercentage(%f) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func rangeIDs(from, to uint) []uint {
	ids := make([]uint, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}
