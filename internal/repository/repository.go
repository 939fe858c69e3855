package repository

import (
	"context"
	"time"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/jmoiron/sqlx"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Template operations
	CreateTemplate(ctx context.Context, template *models.Template) error
	GetTemplate(ctx context.Context, templateID string) (*models.Template, error)
	ListTemplates(ctx context.Context, userID, category string) ([]models.Template, error)
	UpdateTemplate(ctx context.Context, template *models.Template) error
	DeleteTemplate(ctx context.Context, templateID string) error

	// Contract operations
	CreateContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, contractID string) (*models.Contract, error)
	GetContractByVerification(ctx context.Context, identifier string) (*models.Contract, error)
	GetUserContracts(ctx context.Context, userID, email string) ([]models.Contract, error)
	UpdateContract(ctx context.Context, contract *models.Contract, entry *models.HistoryEntry) error
	DeleteContract(ctx context.Context, contractID string) error

	// Signing workflow
	MarkPartySigned(ctx context.Context, party *models.Party, entry *models.HistoryEntry) error
	CountUnsignedParties(ctx context.Context, contractID string) (int, error)
	FinalizeContract(ctx context.Context, contract *models.Contract, entry *models.HistoryEntry) (bool, error)
	ExpireContract(ctx context.Context, contractID string, when time.Time) error

	// Notification operations
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotification(ctx context.Context, notificationID string) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, notificationID string) error
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}
