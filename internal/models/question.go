package models

import (
	"time"
)

// AnswerLetter identifies one of the four fixed options of a question.
type AnswerLetter string

const (
	LetterA AnswerLetter = "A"
	LetterB AnswerLetter = "B"
	LetterC AnswerLetter = "C"
	LetterD AnswerLetter = "D"
)

func (l AnswerLetter) IsValid() bool {
	switch l {
	case LetterA, LetterB, LetterC, LetterD:
		return true
	}
	return false
}

// Question is a single-choice item belonging to exactly one test. Questions
// are deleted with their test and are never shared across tests.
type Question struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	TestID        uint         `json:"test_id" gorm:"not null;index"`
	Text          string       `json:"text" gorm:"type:text;not null"`
	OptionA       string       `json:"option_a" gorm:"type:text;not null"`
	OptionB       string       `json:"option_b" gorm:"type:text;not null"`
	OptionC       string       `json:"option_c" gorm:"type:text;not null"`
	OptionD       string       `json:"option_d" gorm:"type:text;not null"`
	CorrectAnswer AnswerLetter `json:"-" gorm:"size:1;not null"`
	Points        int          `json:"points" gorm:"not null;default:2"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Relationships
	Test *Test `json:"test,omitempty" gorm:"foreignKey:TestID"`
}

func (Question) TableName() string {
	return "questions"
}

// Option returns the text behind a letter, or "" for an invalid letter.
func (q *Question) Option(letter AnswerLetter) string {
	switch letter {
	case LetterA:
		return q.OptionA
	case LetterB:
		return q.OptionB
	case LetterC:
		return q.OptionC
	case LetterD:
		return q.OptionD
	}
	return ""
}
