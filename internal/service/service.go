package service

import (
	"context"
	"time"

	"github.com/covenantlabs/covenant-server/internal/ledger"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/covenantlabs/covenant-server/internal/repository"
	"github.com/covenantlabs/covenant-server/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication and profile
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	UpdateDigitalIdentity(ctx context.Context, userID string, req models.UpdateIdentityRequest) (*models.User, error)

	// Templates
	CreateTemplate(ctx context.Context, userID string, req models.CreateTemplateRequest) (*models.Template, error)
	ListTemplates(ctx context.Context, userID, category string) ([]models.Template, error)
	GetTemplate(ctx context.Context, userID, templateID string) (*models.Template, error)
	UpdateTemplate(ctx context.Context, userID, templateID string, req models.UpdateTemplateRequest) (*models.Template, error)
	DeleteTemplate(ctx context.Context, userID, templateID string) error

	// Contracts
	CreateContract(ctx context.Context, userID string, req models.CreateContractRequest) (*models.Contract, error)
	ListContracts(ctx context.Context, userID string) ([]models.Contract, error)
	GetContract(ctx context.Context, userID, contractID string) (*models.Contract, error)
	UpdateContract(ctx context.Context, userID, contractID string, req models.UpdateContractRequest) (*models.Contract, error)
	DeleteContract(ctx context.Context, userID, contractID string) error
	SignContract(ctx context.Context, userID, contractID string, req models.SignContractRequest) (*models.Contract, error)
	VerifyContract(ctx context.Context, identifier string) (*models.VerificationResponse, error)

	// Notifications
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	ledger        ledger.Ledger
	logger        *utils.Logger
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, ldg ledger.Ledger, logger *utils.Logger, jwtSecret string) Service {
	return &DefaultService{
		repo:          repo,
		ledger:        ldg,
		logger:        logger,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
	}
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": user.ID, // subject
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
