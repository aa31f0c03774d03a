package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, testID uint, req *validator.QuestionCreateRequest, requester Requester) (*QuestionResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkTestAccess(ctx, testID, requester); err != nil {
		return nil, err
	}

	question := &models.Question{
		TestID:        testID,
		Text:          req.Text,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: models.AnswerLetter(req.CorrectAnswer),
		Points:        models.PointsPerQuestion,
	}
	if req.Points > 0 {
		question.Points = req.Points
	}

	if err := s.repo.Question().Create(ctx, s.db, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"test_id", testID,
		"created_by", requester.UserID)
	return buildQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, questionID uint, req *validator.QuestionUpdateRequest, requester Requester) (*QuestionResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.checkTestAccess(ctx, question.TestID, requester); err != nil {
		return nil, err
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.OptionA != nil {
		question.OptionA = *req.OptionA
	}
	if req.OptionB != nil {
		question.OptionB = *req.OptionB
	}
	if req.OptionC != nil {
		question.OptionC = *req.OptionC
	}
	if req.OptionD != nil {
		question.OptionD = *req.OptionD
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = models.AnswerLetter(*req.CorrectAnswer)
	}
	if req.Points != nil {
		question.Points = *req.Points
	}

	if err := s.repo.Question().Update(ctx, s.db, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated",
		"question_id", questionID,
		"test_id", question.TestID,
		"updated_by", requester.UserID)
	return buildQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, questionID uint, requester Requester) error {
	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.checkTestAccess(ctx, question.TestID, requester); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, s.db, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted",
		"question_id", questionID,
		"test_id", question.TestID,
		"deleted_by", requester.UserID)
	return nil
}

func (s *questionService) GetByTest(ctx context.Context, testID uint, requester Requester) ([]*QuestionResponse, error) {
	if err := s.checkTestAccess(ctx, testID, requester); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByTest(ctx, s.db, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, buildQuestionResponse(question))
	}
	return responses, nil
}

// ImportExcel reads the first sheet of a workbook and bulk-creates questions.
// Expected columns: text, option A, option B, option C, option D, correct
// letter and optionally points. A header row is detected and skipped. Rows
// that fail to parse are reported, never imported partially.
func (s *questionService) ImportExcel(ctx context.Context, testID uint, r io.Reader, requester Requester) (*ImportReport, error) {
	if err := s.checkTestAccess(ctx, testID, requester); err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewBusinessRuleError("invalid_workbook", fmt.Sprintf("cannot read workbook: %v", err))
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewBusinessRuleError("invalid_workbook", "workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, NewBusinessRuleError("invalid_workbook", fmt.Sprintf("cannot read sheet %q: %v", sheets[0], err))
	}

	report := &ImportReport{}
	questions := make([]*models.Question, 0, len(rows))

	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if isEmptyRow(row) {
			continue
		}

		question, err := parseQuestionRow(row, testID)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, s.db, questions); err != nil {
			return nil, fmt.Errorf("failed to import questions: %w", err)
		}
	}
	report.Created = len(questions)

	s.logger.Info("Questions imported",
		"test_id", testID,
		"created", report.Created,
		"skipped", report.Skipped,
		"imported_by", requester.UserID)
	return report, nil
}

// checkTestAccess reuses the test ownership rules for the question bank.
func (s *questionService) checkTestAccess(ctx context.Context, testID uint, requester Requester) error {
	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}

	switch requester.Role {
	case models.RoleAdmin, models.RoleDean:
		return nil
	case models.RoleTeacher:
		if test.CreatedBy == requester.UserID {
			return nil
		}
		return NewPermissionError(requester.UserID, testID, "question", "manage", "not the test owner")
	}
	return NewPermissionError(requester.UserID, testID, "question", "manage", "staff role required")
}

func parseQuestionRow(row []string, testID uint) (*models.Question, error) {
	if len(row) < 6 {
		return nil, fmt.Errorf("expected at least 6 columns, got %d", len(row))
	}

	text := strings.TrimSpace(row[0])
	if text == "" {
		return nil, fmt.Errorf("question text is empty")
	}

	options := make([]string, 4)
	for i := 0; i < 4; i++ {
		options[i] = strings.TrimSpace(row[i+1])
		if options[i] == "" {
			return nil, fmt.Errorf("option %c is empty", 'A'+i)
		}
	}

	letter := models.AnswerLetter(strings.ToUpper(strings.TrimSpace(row[5])))
	if !letter.IsValid() {
		return nil, fmt.Errorf("correct answer %q is not one of A, B, C, D", row[5])
	}

	points := models.PointsPerQuestion
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(row[6]))
		if err != nil || parsed < 1 || parsed > 10 {
			return nil, fmt.Errorf("points %q must be a number between 1 and 10", row[6])
		}
		points = parsed
	}

	return &models.Question{
		TestID:        testID,
		Text:          text,
		OptionA:       options[0],
		OptionB:       options[1],
		OptionC:       options[2],
		OptionD:       options[3],
		CorrectAnswer: letter,
		Points:        points,
	}, nil
}

// looksLikeHeader treats a first row mentioning "question" or "text" in the
// first cell as column headers.
func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return strings.Contains(first, "question") || first == "text" || first == "savol"
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func buildQuestionResponse(question *models.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:            question.ID,
		TestID:        question.TestID,
		Text:          question.Text,
		OptionA:       question.OptionA,
		OptionB:       question.OptionB,
		OptionC:       question.OptionC,
		OptionD:       question.OptionD,
		CorrectAnswer: question.CorrectAnswer,
		Points:        question.Points,
	}
}
