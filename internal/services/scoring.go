package services

import (
	"math"

	"github.com/hemis-edu/exam-service/internal/models"
)

// AnswerInput is one selected option keyed by question ID.
type AnswerInput struct {
	QuestionID uint
	Selected   models.AnswerLetter
}

// GradedAnswer is the grading verdict for one recorded answer.
type GradedAnswer struct {
	QuestionID uint
	Selected   models.AnswerLetter
	IsCorrect  bool
}

// GradeOutcome is the result of grading one submission.
type GradeOutcome struct {
	Score        int
	MaxScore     int
	Percentage   float64
	Status       models.ResultStatus
	CorrectCount int
	Answers      []GradedAnswer
}

// gradeSubmission grades a submission against the correct answers of the
// test's question bank. Every correct answer is worth
// models.PointsPerQuestion; the total is clamped to models.FixedMaxScore.
// Answers for question IDs outside the bank are dropped without error, and
// only the first answer per question counts. The function is deterministic
// and touches no shared state.
func gradeSubmission(correct map[uint]models.AnswerLetter, answers []AnswerInput, passingScore int) GradeOutcome {
	outcome := GradeOutcome{
		MaxScore: models.FixedMaxScore,
		Answers:  make([]GradedAnswer, 0, len(answers)),
	}

	seen := make(map[uint]bool, len(answers))
	for _, answer := range answers {
		correctLetter, known := correct[answer.QuestionID]
		if !known || seen[answer.QuestionID] {
			continue
		}
		seen[answer.QuestionID] = true

		isCorrect := answer.Selected == correctLetter
		if isCorrect {
			outcome.CorrectCount++
			outcome.Score += models.PointsPerQuestion
		}

		outcome.Answers = append(outcome.Answers, GradedAnswer{
			QuestionID: answer.QuestionID,
			Selected:   answer.Selected,
			IsCorrect:  isCorrect,
		})
	}

	if outcome.Score > models.FixedMaxScore {
		outcome.Score = models.FixedMaxScore
	}

	outcome.Percentage = float64(outcome.Score) / float64(models.FixedMaxScore) * 100

	if passingScore <= 0 {
		passingScore = models.DefaultPassingScore
	}
	if outcome.Score >= passingScore {
		outcome.Status = models.ResultPassed
	} else {
		outcome.Status = models.ResultFailed
	}

	return outcome
}

// roundPercentage is the single rounding rule for API responses. The stored
// percentage stays unrounded.
func roundPercentage(p float64) int {
	return int(math.Round(p))
}
