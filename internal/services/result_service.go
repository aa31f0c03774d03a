package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/events"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type resultService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewResultService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ResultService {
	return &resultService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *resultService) GetByID(ctx context.Context, id uint, requester Requester) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if !requester.IsStaff() {
		student, err := s.repo.Student().GetByUserID(ctx, s.db, requester.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrNoStudentProfile
			}
			return nil, fmt.Errorf("failed to get student profile: %w", err)
		}
		if result.StudentID != student.ID {
			return nil, NewPermissionError(requester.UserID, id, "result", "read", "not the session owner")
		}
	}

	response := buildResultResponse(result)
	response.AnsweredCount = len(result.Answers)
	for _, answer := range result.Answers {
		if answer.IsCorrect {
			response.CorrectCount++
		}
	}
	return response, nil
}

// List is role-aware: students are always scoped to their own sessions,
// whatever filters they send.
func (s *resultService) List(ctx context.Context, filters repositories.ResultFilters, requester Requester) (*ResultListResponse, error) {
	if !requester.IsStaff() {
		student, err := s.repo.Student().GetByUserID(ctx, s.db, requester.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrNoStudentProfile
			}
			return nil, fmt.Errorf("failed to get student profile: %w", err)
		}
		filters.StudentID = &student.ID
		filters.GroupID = nil
	}

	results, total, err := s.repo.Result().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	responses := make([]*ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, buildResultResponse(result))
	}
	return &ResultListResponse{Results: responses, Total: total}, nil
}

func (s *resultService) GrantRetake(ctx context.Context, resultID uint, requester Requester) (*ResultResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, resultID, "result", "grant_retake", "staff role required")
	}

	result, err := s.repo.Result().GetByID(ctx, s.db, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if result.Status == models.ResultInProgress {
		return nil, NewBusinessRuleError("retake_in_progress",
			"cannot grant a retake on a session still in progress")
	}

	granted, err := s.repo.Result().GrantRetake(ctx, s.db, []uint{resultID}, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to grant retake: %w", err)
	}
	if granted == 0 {
		return nil, NewBusinessRuleError("retake_in_progress",
			"cannot grant a retake on a session still in progress")
	}

	s.logger.Info("Retake granted",
		"result_id", resultID,
		"granted_by", requester.UserID)

	s.publishRetakeGranted(ctx, []uint{resultID}, requester.UserID)

	result, err = s.repo.Result().GetByID(ctx, s.db, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload result: %w", err)
	}
	return buildResultResponse(result), nil
}

// BulkGrantRetake grants retakes on every listed terminal session. Rows
// still in progress are silently left untouched; the caller sees the count
// of rows actually granted.
func (s *resultService) BulkGrantRetake(ctx context.Context, resultIDs []uint, requester Requester) (*RetakeGrantResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, 0, "result", "grant_retake", "staff role required")
	}

	req := &validator.BulkRetakeRequest{ResultIDs: resultIDs}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	granted, err := s.repo.Result().GrantRetake(ctx, s.db, resultIDs, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to grant retakes: %w", err)
	}

	s.logger.Info("Bulk retake granted",
		"requested", len(resultIDs),
		"granted", granted,
		"granted_by", requester.UserID)

	if granted > 0 {
		s.publishRetakeGranted(ctx, resultIDs, requester.UserID)
	}
	return &RetakeGrantResponse{Granted: granted}, nil
}

func (s *resultService) publishRetakeGranted(ctx context.Context, resultIDs []uint, grantedBy string) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.EventRetakeGranted, events.RetakeGrantedEvent{
		ResultIDs: resultIDs,
		GrantedBy: grantedBy,
		GrantedAt: time.Now(),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish retake granted event",
			"result_count", len(resultIDs),
			"error", err)
	}
}
