package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hemis-edu/exam-service/internal/models"
)

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator handles struct and business rule validation
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the exam domain rules registered
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerBusinessRules()
	return v
}

// Validate validates a struct against its tags
func (v *Validator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	err := v.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fieldErr.Field(),
				Message: errorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errs
}

// ValidateTestCreate validates test creation business rules
func (v *Validator) ValidateTestCreate(req *TestCreateRequest) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, v.Validate(req)...)

	if !req.EndDate.After(req.StartDate) {
		errs = append(errs, ValidationError{
			Field:   "end_date",
			Message: "must be after start_date",
			Value:   req.EndDate,
			Rule:    "business_logic",
		})
	}

	return errs
}

// ValidateTestUpdate validates test update business rules
func (v *Validator) ValidateTestUpdate(req *TestUpdateRequest, existing *models.Test) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, v.Validate(req)...)

	start := existing.StartDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	end := existing.EndDate
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if !end.After(start) {
		errs = append(errs, ValidationError{
			Field:   "end_date",
			Message: "must be after start_date",
			Value:   end,
			Rule:    "business_logic",
		})
	}

	// Active tests keep their scoring rules; pause or complete them first
	if existing.Status == models.TestActive && req.PassingScore != nil && *req.PassingScore != existing.PassingScore {
		errs = append(errs, ValidationError{
			Field:   "passing_score",
			Message: "cannot be changed while the test is active",
			Value:   *req.PassingScore,
			Rule:    "business_logic",
		})
	}

	return errs
}

// ValidateStatusTransition validates test status transitions
func (v *Validator) ValidateStatusTransition(current, next models.TestStatus) ValidationErrors {
	var errs ValidationErrors

	allowed := map[models.TestStatus][]models.TestStatus{
		models.TestScheduled: {models.TestActive, models.TestCompleted},
		models.TestActive:    {models.TestPaused, models.TestCompleted},
		models.TestPaused:    {models.TestActive, models.TestCompleted},
		models.TestCompleted: {},
	}

	ok := false
	for _, s := range allowed[current] {
		if s == next {
			ok = true
			break
		}
	}

	if !ok {
		errs = append(errs, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	return errs
}

// registerBusinessRules registers custom rule validators
func (v *Validator) registerBusinessRules() {
	// Test duration in minutes
	v.validate.RegisterValidation("test_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 5 && duration <= 300
	})

	// Passing score never exceeds the fixed total
	v.validate.RegisterValidation("passing_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= int64(models.FixedMaxScore)
	})

	// Title length
	v.validate.RegisterValidation("test_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 500
	})

	// Option letter of a single-choice question
	v.validate.RegisterValidation("answer_letter", func(fl validator.FieldLevel) bool {
		return models.AnswerLetter(fl.Field().String()).IsValid()
	})

	// Per-question points
	v.validate.RegisterValidation("question_points", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 1 && points <= 10
	})

	// Camera proctoring mode
	v.validate.RegisterValidation("camera_mode", func(fl validator.FieldLevel) bool {
		switch models.CameraMode(fl.Field().String()) {
		case models.CameraRequired, models.CameraNotRequired, models.CameraDefault:
			return true
		}
		return false
	})

	v.validate.RegisterValidation("test_status", func(fl validator.FieldLevel) bool {
		return models.TestStatus(fl.Field().String()).IsValid()
	})
}

func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "test_duration":
		return "must be between 5 and 300 minutes"
	case "passing_score":
		return fmt.Sprintf("must be between 0 and %d", models.FixedMaxScore)
	case "test_title":
		return "must be between 1 and 500 characters"
	case "answer_letter":
		return "must be one of A, B, C, D"
	case "question_points":
		return "must be between 1 and 10"
	case "camera_mode":
		return "must be one of required, not_required, default"
	case "test_status":
		return "is not a valid status"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
