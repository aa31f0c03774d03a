package repositories

import "context"

// Repository aggregates all entity repositories behind one access point.
type Repository interface {
	// Exam definition domain
	Test() TestRepository
	Question() QuestionRepository
	Subject() SubjectRepository
	Group() GroupRepository

	// Exam session domain
	Result() ResultRepository
	Answer() AnswerRepository

	// Academic profiles
	Student() StudentRepository

	// User domain (read-only, backed by Casdoor)
	User() UserRepository

	// Operational
	Setting() SettingRepository
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
