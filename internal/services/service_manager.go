package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/hemis-edu/exam-service/internal/events"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/validator"
)

// DefaultServiceManager wires all services over one repository and one
// event publisher.
type DefaultServiceManager struct {
	mu          sync.RWMutex
	initialized bool

	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	session    ExamSessionService
	test       TestService
	question   QuestionService
	result     ResultService
	student    StudentService
	monitoring MonitoringService
}

func NewDefaultServiceManager(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) *DefaultServiceManager {
	return &DefaultServiceManager{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (m *DefaultServiceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository not reachable: %w", err)
	}

	m.session = NewExamSessionService(m.repo, m.db, m.logger, m.validator, m.publisher)
	m.test = NewTestService(m.repo, m.db, m.logger, m.validator)
	m.question = NewQuestionService(m.repo, m.db, m.logger, m.validator)
	m.result = NewResultService(m.repo, m.db, m.logger, m.validator, m.publisher)
	m.student = NewStudentService(m.repo, m.db, m.logger, m.validator)
	m.monitoring = NewMonitoringService(m.repo, m.db, m.logger, m.validator, m.publisher)

	m.initialized = true
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *DefaultServiceManager) Session() ExamSessionService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *DefaultServiceManager) Test() TestService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.test
}

func (m *DefaultServiceManager) Question() QuestionService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.question
}

func (m *DefaultServiceManager) Result() ResultService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

func (m *DefaultServiceManager) Student() StudentService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.student
}

func (m *DefaultServiceManager) Monitoring() MonitoringService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.monitoring
}

func (m *DefaultServiceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *DefaultServiceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}

	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	m.initialized = false
	m.logger.Info("Service manager shut down")
	return nil
}
