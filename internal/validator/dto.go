package validator

import (
	"time"
)

// TestCreateRequest represents the request structure for creating tests
type TestCreateRequest struct {
	Title             string    `json:"title" validate:"required,test_title"`
	Description       *string   `json:"description" validate:"omitempty,max=2000"`
	SubjectID         uint      `json:"subject_id" validate:"required"`
	QuestionCount     int       `json:"question_count" validate:"omitempty,min=1,max=100"`
	Duration          int       `json:"duration" validate:"required,test_duration"`
	PassingScore      int       `json:"passing_score" validate:"omitempty,passing_score"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	AllowMobileAccess *bool     `json:"allow_mobile_access"`
	GroupIDs          []uint    `json:"group_ids" validate:"omitempty,dive,min=1"`
}

// TestUpdateRequest represents the request structure for updating tests
type TestUpdateRequest struct {
	Title             *string    `json:"title" validate:"omitempty,test_title"`
	Description       *string    `json:"description" validate:"omitempty,max=2000"`
	QuestionCount     *int       `json:"question_count" validate:"omitempty,min=1,max=100"`
	Duration          *int       `json:"duration" validate:"omitempty,test_duration"`
	PassingScore      *int       `json:"passing_score" validate:"omitempty,passing_score"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Status            *string    `json:"status" validate:"omitempty,test_status"`
	AllowMobileAccess *bool      `json:"allow_mobile_access"`
}

// AssignGroupsRequest assigns a test to academic groups
type AssignGroupsRequest struct {
	GroupIDs []uint `json:"group_ids" validate:"required,min=1,dive,min=1"`
}

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	Text          string `json:"text" validate:"required,min=1,max=4000"`
	OptionA       string `json:"option_a" validate:"required,max=2000"`
	OptionB       string `json:"option_b" validate:"required,max=2000"`
	OptionC       string `json:"option_c" validate:"required,max=2000"`
	OptionD       string `json:"option_d" validate:"required,max=2000"`
	CorrectAnswer string `json:"correct_answer" validate:"required,answer_letter"`
	Points        int    `json:"points" validate:"omitempty,question_points"`
}

// QuestionUpdateRequest represents the request structure for updating questions
type QuestionUpdateRequest struct {
	Text          *string `json:"text" validate:"omitempty,min=1,max=4000"`
	OptionA       *string `json:"option_a" validate:"omitempty,max=2000"`
	OptionB       *string `json:"option_b" validate:"omitempty,max=2000"`
	OptionC       *string `json:"option_c" validate:"omitempty,max=2000"`
	OptionD       *string `json:"option_d" validate:"omitempty,max=2000"`
	CorrectAnswer *string `json:"correct_answer" validate:"omitempty,answer_letter"`
	Points        *int    `json:"points" validate:"omitempty,question_points"`
}

// AnswerSubmission is one answered question inside a submit request
type AnswerSubmission struct {
	QuestionID     uint   `json:"question_id" validate:"required,min=1"`
	SelectedAnswer string `json:"selected_answer" validate:"required,answer_letter"`
}

// SubmitSessionRequest carries all answers of one exam session
type SubmitSessionRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"omitempty,dive"`
}

// BulkRetakeRequest grants retakes on a set of results
type BulkRetakeRequest struct {
	ResultIDs []uint `json:"result_ids" validate:"required,min=1,dive,min=1"`
}

// ExtendTimeRequest extends the window of all active tests
type ExtendTimeRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=600"`
}

// SettingUpdateRequest sets one global setting
type SettingUpdateRequest struct {
	Value       string  `json:"value" validate:"required,max=500"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// StudentUpdateRequest updates the mutable parts of an academic profile
type StudentUpdateRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	GroupID    *uint   `json:"group_id" validate:"omitempty,min=1"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Status     *string `json:"status" validate:"omitempty,oneof=active expelled on_leave graduated"`
	CameraMode *string `json:"camera_mode" validate:"omitempty,camera_mode"`
}
