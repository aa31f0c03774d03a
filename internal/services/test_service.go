package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *testService) Create(ctx context.Context, req *validator.TestCreateRequest, createdBy string) (*TestResponse, error) {
	s.logger.Info("Creating test", "title", req.Title, "created_by", createdBy)

	if errs := s.validator.ValidateTestCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Subject().GetByID(ctx, s.db, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	test := &models.Test{
		Title:        req.Title,
		Description:  req.Description,
		SubjectID:    req.SubjectID,
		Duration:     req.Duration,
		MaxScore:     models.FixedMaxScore,
		PassingScore: models.DefaultPassingScore,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       models.TestScheduled,
		CreatedBy:    createdBy,
	}
	if req.QuestionCount > 0 {
		test.QuestionCount = req.QuestionCount
	} else {
		test.QuestionCount = 25
	}
	if req.PassingScore > 0 {
		test.PassingScore = req.PassingScore
	}
	if req.AllowMobileAccess != nil {
		test.AllowMobileAccess = *req.AllowMobileAccess
	} else {
		test.AllowMobileAccess = true
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Test().Create(ctx, nil, test); err != nil {
			return fmt.Errorf("failed to create test: %w", err)
		}
		if len(req.GroupIDs) > 0 {
			if err := s.verifyGroupsExist(ctx, txRepo, req.GroupIDs); err != nil {
				return err
			}
			if err := txRepo.Test().AssignGroups(ctx, nil, test.ID, req.GroupIDs); err != nil {
				return fmt.Errorf("failed to assign groups: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test created", "test_id", test.ID, "title", test.Title)
	return s.loadTestResponse(ctx, test.ID)
}

func (s *testService) GetByID(ctx context.Context, id uint, requester Requester) (*TestResponse, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, id, "test", "read", "staff role required")
	}

	response := buildTestResponse(test)
	if count, err := s.repo.Question().CountByTest(ctx, s.db, id); err == nil {
		response.BankSize = count
	}
	return response, nil
}

func (s *testService) Update(ctx context.Context, id uint, req *validator.TestUpdateRequest, requester Requester) (*TestResponse, error) {
	test, err := s.getOwnedTest(ctx, id, requester, "update")
	if err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateTestUpdate(req, test); len(errs) > 0 {
		return nil, errs
	}

	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.QuestionCount != nil {
		test.QuestionCount = *req.QuestionCount
	}
	if req.Duration != nil {
		test.Duration = *req.Duration
	}
	if req.PassingScore != nil {
		test.PassingScore = *req.PassingScore
	}
	if req.StartDate != nil {
		test.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		test.EndDate = *req.EndDate
	}
	if req.AllowMobileAccess != nil {
		test.AllowMobileAccess = *req.AllowMobileAccess
	}
	if req.Status != nil {
		next := models.TestStatus(*req.Status)
		if errs := s.validator.ValidateStatusTransition(test.Status, next); len(errs) > 0 {
			return nil, errs
		}
		test.Status = next
	}

	if err := s.repo.Test().Update(ctx, s.db, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.logger.Info("Test updated", "test_id", id, "updated_by", requester.UserID)
	return s.loadTestResponse(ctx, id)
}

// Delete refuses once any session has been recorded; completed exams keep
// their audit trail.
func (s *testService) Delete(ctx context.Context, id uint, requester Requester) error {
	test, err := s.getOwnedTest(ctx, id, requester, "delete")
	if err != nil {
		return err
	}

	stats, err := s.repo.Result().GetTestStats(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to check test sessions: %w", err)
	}
	if stats.TotalSessions > 0 {
		return ErrTestHasSessions
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().DeleteByTest(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		return txRepo.Test().Delete(ctx, nil, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Test deleted", "test_id", id, "title", test.Title, "deleted_by", requester.UserID)
	return nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters, requester Requester) (*TestListResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, 0, "test", "list", "staff role required")
	}

	// Teachers see their own tests only; deans and admins see everything.
	if requester.Role == models.RoleTeacher {
		filters.CreatedBy = &requester.UserID
	}

	tests, total, err := s.repo.Test().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	responses := make([]*TestResponse, 0, len(tests))
	for _, test := range tests {
		responses = append(responses, buildTestResponse(test))
	}
	return &TestListResponse{Tests: responses, Total: total}, nil
}

// ListForStudent returns the active tests assigned to the caller's group.
// Students without a group see an empty list, not an error.
func (s *testService) ListForStudent(ctx context.Context, userID string) (*TestListResponse, error) {
	student, err := s.repo.Student().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoStudentProfile
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	if student.GroupID == nil {
		return &TestListResponse{Tests: []*TestResponse{}}, nil
	}

	tests, err := s.repo.Test().GetVisibleToGroup(ctx, s.db, *student.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible tests: %w", err)
	}

	responses := make([]*TestResponse, 0, len(tests))
	for _, test := range tests {
		response := buildTestResponse(test)
		// Students never see pass thresholds ahead of time.
		response.PassingScore = 0
		response.CreatedBy = ""
		responses = append(responses, response)
	}
	return &TestListResponse{Tests: responses, Total: int64(len(responses))}, nil
}

func (s *testService) AssignGroups(ctx context.Context, testID uint, groupIDs []uint, requester Requester) error {
	if _, err := s.getOwnedTest(ctx, testID, requester, "assign"); err != nil {
		return err
	}

	if err := s.verifyGroupsExist(ctx, s.repo, groupIDs); err != nil {
		return err
	}

	if err := s.repo.Test().AssignGroups(ctx, s.db, testID, groupIDs); err != nil {
		return fmt.Errorf("failed to assign groups: %w", err)
	}

	s.logger.Info("Groups assigned to test",
		"test_id", testID,
		"group_count", len(groupIDs),
		"assigned_by", requester.UserID)
	return nil
}

func (s *testService) UnassignGroup(ctx context.Context, testID, groupID uint, requester Requester) error {
	if _, err := s.getOwnedTest(ctx, testID, requester, "assign"); err != nil {
		return err
	}

	if err := s.repo.Test().UnassignGroup(ctx, s.db, testID, groupID); err != nil {
		return fmt.Errorf("failed to unassign group: %w", err)
	}

	s.logger.Info("Group unassigned from test",
		"test_id", testID,
		"group_id", groupID,
		"unassigned_by", requester.UserID)
	return nil
}

func (s *testService) UpdateStatus(ctx context.Context, testID uint, status models.TestStatus, requester Requester) (*TestResponse, error) {
	test, err := s.getOwnedTest(ctx, testID, requester, "update")
	if err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateStatusTransition(test.Status, status); len(errs) > 0 {
		return nil, errs
	}

	previous := test.Status
	test.Status = status
	if err := s.repo.Test().Update(ctx, s.db, test); err != nil {
		return nil, fmt.Errorf("failed to update test status: %w", err)
	}

	s.logger.Info("Test status changed",
		"test_id", testID,
		"from", previous,
		"to", status,
		"changed_by", requester.UserID)
	return s.loadTestResponse(ctx, testID)
}

func (s *testService) GetStats(ctx context.Context, testID uint, requester Requester) (*repositories.TestStats, error) {
	if _, err := s.getOwnedTest(ctx, testID, requester, "read"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Result().GetTestStats(ctx, s.db, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test stats: %w", err)
	}
	return stats, nil
}

// getOwnedTest loads the test and checks the caller may manage it. Teachers
// manage only their own tests; deans and admins manage all of them.
func (s *testService) getOwnedTest(ctx context.Context, testID uint, requester Requester, action string) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	switch requester.Role {
	case models.RoleAdmin, models.RoleDean:
		return test, nil
	case models.RoleTeacher:
		if test.CreatedBy == requester.UserID {
			return test, nil
		}
		return nil, NewPermissionError(requester.UserID, testID, "test", action, "not the test owner")
	}
	return nil, NewPermissionError(requester.UserID, testID, "test", action, "staff role required")
}

func (s *testService) verifyGroupsExist(ctx context.Context, repo repositories.Repository, groupIDs []uint) error {
	groups, err := repo.Group().GetByIDs(ctx, nil, groupIDs)
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}
	if len(groups) != len(groupIDs) {
		return ErrGroupNotFound
	}
	return nil
}

func (s *testService) loadTestResponse(ctx context.Context, testID uint) (*TestResponse, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, s.db, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload test: %w", err)
	}
	return buildTestResponse(test), nil
}

func buildTestResponse(test *models.Test) *TestResponse {
	response := &TestResponse{
		ID:                test.ID,
		Title:             test.Title,
		Description:       test.Description,
		SubjectID:         test.SubjectID,
		QuestionCount:     test.QuestionCount,
		Duration:          test.Duration,
		MaxScore:          test.MaxScore,
		PassingScore:      test.PassingScore,
		StartDate:         test.StartDate,
		EndDate:           test.EndDate,
		Status:            test.Status,
		AllowMobileAccess: test.AllowMobileAccess,
		CreatedBy:         test.CreatedBy,
		CreatedAt:         test.CreatedAt,
		Groups:            test.Groups,
	}
	if test.Subject != nil {
		response.SubjectName = test.Subject.Name
	}
	return response
}
