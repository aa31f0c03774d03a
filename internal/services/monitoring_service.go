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

// Mass-control action names carried in responses and events.
const (
	actionPauseAll   = "pause_all"
	actionResumeAll  = "resume_all"
	actionExtendTime = "extend_time"
)

type monitoringService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewMonitoringService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) MonitoringService {
	return &monitoringService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *monitoringService) Dashboard(ctx context.Context, requester Requester) (*repositories.DashboardStats, error) {
	if err := s.requireSupervisor(requester, "dashboard"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Dashboard().GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

// PauseAll moves every active test to paused in one statement. Sessions
// already in progress keep running; only new starts are blocked.
func (s *monitoringService) PauseAll(ctx context.Context, requester Requester) (*MassControlResponse, error) {
	if err := s.requireSupervisor(requester, actionPauseAll); err != nil {
		return nil, err
	}

	affected, err := s.repo.Test().UpdateStatusBulk(ctx, s.db, models.TestActive, models.TestPaused)
	if err != nil {
		return nil, fmt.Errorf("failed to pause tests: %w", err)
	}

	s.logger.Info("All active tests paused",
		"affected", affected,
		"performed_by", requester.UserID)
	s.publishMassControl(ctx, actionPauseAll, affected, requester.UserID)

	return &MassControlResponse{Action: actionPauseAll, AffectedTests: affected}, nil
}

func (s *monitoringService) ResumeAll(ctx context.Context, requester Requester) (*MassControlResponse, error) {
	if err := s.requireSupervisor(requester, actionResumeAll); err != nil {
		return nil, err
	}

	affected, err := s.repo.Test().UpdateStatusBulk(ctx, s.db, models.TestPaused, models.TestActive)
	if err != nil {
		return nil, fmt.Errorf("failed to resume tests: %w", err)
	}

	s.logger.Info("All paused tests resumed",
		"affected", affected,
		"performed_by", requester.UserID)
	s.publishMassControl(ctx, actionResumeAll, affected, requester.UserID)

	return &MassControlResponse{Action: actionResumeAll, AffectedTests: affected}, nil
}

// ExtendTime pushes the window close of every active test further out.
// Running sessions gain time too, since their deadline is capped by the
// test window.
func (s *monitoringService) ExtendTime(ctx context.Context, minutes int, requester Requester) (*MassControlResponse, error) {
	if err := s.requireSupervisor(requester, actionExtendTime); err != nil {
		return nil, err
	}

	req := &validator.ExtendTimeRequest{Minutes: minutes}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	affected, err := s.repo.Test().ExtendActiveWindows(ctx, s.db, time.Duration(minutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to extend test windows: %w", err)
	}

	s.logger.Info("Active test windows extended",
		"minutes", minutes,
		"affected", affected,
		"performed_by", requester.UserID)
	s.publishMassControl(ctx, actionExtendTime, affected, requester.UserID)

	return &MassControlResponse{Action: actionExtendTime, AffectedTests: affected}, nil
}

func (s *monitoringService) GetSetting(ctx context.Context, key string) (string, error) {
	value, err := s.repo.Setting().Get(ctx, s.db, key)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

func (s *monitoringService) SetSetting(ctx context.Context, key string, req *validator.SettingUpdateRequest, requester Requester) error {
	if err := s.requireSupervisor(requester, "set_setting"); err != nil {
		return err
	}

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	setting := &models.GlobalSetting{
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedBy:   &requester.UserID,
	}
	if err := s.repo.Setting().Set(ctx, s.db, setting); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}

	s.logger.Info("Global setting updated",
		"key", key,
		"updated_by", requester.UserID)
	return nil
}

func (s *monitoringService) ListSettings(ctx context.Context, requester Requester) ([]*models.GlobalSetting, error) {
	if err := s.requireSupervisor(requester, "list_settings"); err != nil {
		return nil, err
	}

	settings, err := s.repo.Setting().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// requireSupervisor gates exam-wide controls to admins and deans. Teachers
// manage their own tests through TestService instead.
func (s *monitoringService) requireSupervisor(requester Requester, action string) error {
	if requester.Role == models.RoleAdmin || requester.Role == models.RoleDean {
		return nil
	}
	return NewPermissionError(requester.UserID, 0, "monitoring", action, "admin or dean role required")
}

func (s *monitoringService) publishMassControl(ctx context.Context, action string, affected int64, performedBy string) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.EventMassControl, events.MassControlEvent{
		Action:        action,
		AffectedTests: affected,
		PerformedBy:   performedBy,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish mass control event",
			"action", action,
			"error", err)
	}
}
