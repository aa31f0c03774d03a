package services

import (
	"strings"
	"testing"

	"github.com/hemis-edu/exam-service/internal/models"
)

func TestParseQuestionRow(t *testing.T) {
	t.Run("full row with points", func(t *testing.T) {
		row := []string{"What is 2+2?", "3", "4", "5", "6", "b", "2"}

		question, err := parseQuestionRow(row, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if question.TestID != 7 {
			t.Errorf("expected test ID 7, got %d", question.TestID)
		}
		if question.CorrectAnswer != models.LetterB {
			t.Errorf("expected correct answer B, got %s", question.CorrectAnswer)
		}
		if question.Points != 2 {
			t.Errorf("expected 2 points, got %d", question.Points)
		}
	})

	t.Run("missing points defaults to the standard weight", func(t *testing.T) {
		row := []string{"Question?", "a", "b", "c", "d", "A"}

		question, err := parseQuestionRow(row, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if question.Points != models.PointsPerQuestion {
			t.Errorf("expected default points %d, got %d", models.PointsPerQuestion, question.Points)
		}
	})

	t.Run("rejected rows", func(t *testing.T) {
		cases := []struct {
			name string
			row  []string
		}{
			{"too few columns", []string{"Question?", "a", "b", "c"}},
			{"empty text", []string{"  ", "a", "b", "c", "d", "A"}},
			{"empty option", []string{"Question?", "a", "", "c", "d", "A"}},
			{"bad letter", []string{"Question?", "a", "b", "c", "d", "E"}},
			{"bad points", []string{"Question?", "a", "b", "c", "d", "A", "eleven"}},
			{"points out of range", []string{"Question?", "a", "b", "c", "d", "A", "11"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := parseQuestionRow(tc.row, 1); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})
}

func TestLooksLikeHeader(t *testing.T) {
	if !looksLikeHeader([]string{"Question text", "Option A"}) {
		t.Error("expected header detection for 'Question text'")
	}
	if !looksLikeHeader([]string{"TEXT"}) {
		t.Error("expected header detection for 'TEXT'")
	}
	if looksLikeHeader([]string{"What is the capital of France?", "Paris"}) {
		t.Error("a real question must not look like a header")
	}
	if looksLikeHeader(nil) {
		t.Error("empty row must not look like a header")
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !isEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("whitespace-only row should be empty")
	}
	if isEmptyRow([]string{"", "x"}) {
		t.Error("row with content should not be empty")
	}
	if !isEmptyRow(nil) {
		t.Error("nil row should be empty")
	}
}

func TestParseQuestionRowTrimsWhitespace(t *testing.T) {
	row := []string{"  Question?  ", " a ", " b ", " c ", " d ", " c "}

	question, err := parseQuestionRow(row, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if question.Text != "Question?" {
		t.Errorf("text not trimmed: %q", question.Text)
	}
	if question.CorrectAnswer != models.LetterC {
		t.Errorf("expected C, got %s", question.CorrectAnswer)
	}
	if strings.HasPrefix(question.OptionA, " ") {
		t.Errorf("option not trimmed: %q", question.OptionA)
	}
}
