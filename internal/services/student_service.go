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

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// GetProfile returns the caller's own academic profile.
func (s *studentService) GetProfile(ctx context.Context, userID string) (*StudentResponse, error) {
	student, err := s.repo.Student().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoStudentProfile
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return buildStudentResponse(student), nil
}

func (s *studentService) GetByID(ctx context.Context, id uint, requester Requester) (*StudentResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, id, "student", "read", "staff role required")
	}

	student, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return buildStudentResponse(student), nil
}

// Update changes the mutable parts of a profile. Camera mode and status are
// staff decisions; students cannot edit their own profile.
func (s *studentService) Update(ctx context.Context, id uint, req *validator.StudentUpdateRequest, requester Requester) (*StudentResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, id, "student", "update", "staff role required")
	}

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	student, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.GroupID != nil {
		if _, err := s.repo.Group().GetByID(ctx, s.db, *req.GroupID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrGroupNotFound
			}
			return nil, fmt.Errorf("failed to get group: %w", err)
		}
		student.GroupID = req.GroupID
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}
	if req.CameraMode != nil {
		student.CameraMode = models.CameraMode(*req.CameraMode)
	}

	if err := s.repo.Student().Update(ctx, s.db, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	s.logger.Info("Student profile updated",
		"student_id", id,
		"updated_by", requester.UserID)

	// Reload with the group preloaded for the response.
	student, err = s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload student: %w", err)
	}
	return buildStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, filters repositories.StudentFilters, requester Requester) (*StudentListResponse, error) {
	if !requester.IsStaff() {
		return nil, NewPermissionError(requester.UserID, 0, "student", "list", "staff role required")
	}

	students, total, err := s.repo.Student().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	responses := make([]*StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, buildStudentResponse(student))
	}
	return &StudentListResponse{Students: responses, Total: total}, nil
}

func buildStudentResponse(student *models.Student) *StudentResponse {
	response := &StudentResponse{
		ID:         student.ID,
		UserID:     student.UserID,
		StudentID:  student.StudentID,
		FullName:   student.FullName,
		GroupID:    student.GroupID,
		Phone:      student.Phone,
		Status:     student.Status,
		CameraMode: student.CameraMode,
	}
	if student.Group != nil {
		response.GroupName = student.Group.Name
	}
	return response
}
