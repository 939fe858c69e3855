package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/covenantlabs/covenant-server/internal/api"
	"github.com/covenantlabs/covenant-server/internal/config"
	"github.com/covenantlabs/covenant-server/internal/ledger"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/covenantlabs/covenant-server/internal/repository"
	"github.com/covenantlabs/covenant-server/internal/service"
	"github.com/covenantlabs/covenant-server/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	JWTSecret   []byte
	DB          *sqlx.DB
	TestUserID  string
	TestUserJWT string
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	// Load configuration from environment
	cfg := config.LoadConfig()

	// Override with test-specific config
	if cfg.Database.DBName == "covenant" && cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	} else if cfg.Database.TestDBName == "" {
		// Fallback to hardcoded test DB if not in environment
		cfg.Database.DBName = "covenant_test"
	}

	// Use a test JWT secret
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	assert.NoError(t, err, "Failed to set up test database")

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service with the simulated ledger
	svc := service.NewDefaultService(repo, ledger.NewSimulated(cfg.Ledger.Network), utils.NewLogger(), cfg.Auth.JWTSecret)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Create test user if needed
	testUserID, token := createTestUser(t, repo, cfg.Auth.JWTSecret)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		DB:          db,
		TestUserID:  testUserID,
		TestUserJWT: token,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	// Clean up database
	if t.DB != nil {
		cleanupTestDatabase(nil, t.Repository)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes any existing test users and data
func cleanupTestDatabase(t *testing.T, repo repository.Repository) {
	// Execute cleanup SQL directly through the DB connection
	if pgRepo, ok := repo.(*repository.PostgresRepository); ok {
		db := pgRepo.GetDB()

		// Delete in dependency order
		tables := []string{
			"notifications",
			"contract_history",
			"contract_parties",
			"contracts",
			"templates",
			"users",
		}
		for _, table := range tables {
			_, err := db.Exec("DELETE FROM " + table)
			if t != nil && err != nil {
				t.Logf("Warning: Failed to clean %s: %v", table, err)
			}
		}
	}
}

// Helper functions
func createTestUser(t *testing.T, repo repository.Repository, jwtSecret string) (string, string) {
	// Clean up any existing test users first
	cleanupTestDatabase(t, repo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.DefaultCost)

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     "testuser@example.com",
		Name:      "Test User",
		Password:  string(hashedPassword),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := repo.CreateUser(context.Background(), user)
	assert.NoError(t, err, "Failed to create test user")

	// Generate JWT token with the provided secret key
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	assert.NoError(t, err, "Failed to generate JWT token")

	return user.ID, tokenString
}

// RegisterUser signs up and logs in an additional user, returning its id and token
func RegisterUser(t *testing.T, router http.Handler, email, name string) (string, string) {
	signupReq := models.SignUpRequest{
		Email:    email,
		Password: "Password123",
		Name:     name,
	}

	w := PerformRequest(router, http.MethodPost, "/api/auth/signup", signupReq, nil)
	assert.Equal(t, http.StatusCreated, w.Code, "Failed to sign up %s", email)

	var signupResp models.AuthResponse
	err := json.Unmarshal(w.Body.Bytes(), &signupResp)
	assert.NoError(t, err)

	loginReq := models.LoginRequest{
		Email:    email,
		Password: "Password123",
	}

	w = PerformRequest(router, http.MethodPost, "/api/auth/login", loginReq, nil)
	assert.Equal(t, http.StatusOK, w.Code, "Failed to log in %s", email)

	var loginResp models.AuthResponse
	err = json.Unmarshal(w.Body.Bytes(), &loginResp)
	assert.NoError(t, err)

	return signupResp.UserID, loginResp.Token
}

// CreateTestTemplate creates a template through the API and returns its id
func CreateTestTemplate(t *testing.T, router http.Handler, token string) string {
	req := models.CreateTemplateRequest{
		Name:        "Test Agreement",
		Description: "A template for tests",
		Category:    "business_agreement",
		Content:     models.JSONContent(`{"body":"The undersigned agree to the terms."}`),
		Fields: []models.TemplateField{
			{Name: "amount", Label: "Amount", Type: "number", Required: true},
		},
	}

	w := PerformRequest(router, http.MethodPost, "/api/templates", req, AuthHeaders(token))
	assert.Equal(t, http.StatusCreated, w.Code, "Failed to create test template")

	var template models.Template
	err := json.Unmarshal(w.Body.Bytes(), &template)
	assert.NoError(t, err)
	assert.NotEmpty(t, template.ID)

	return template.ID
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
