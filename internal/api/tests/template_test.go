package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/covenantlabs/covenant-server/internal/api/testutils"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreateTemplate(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful template creation
	createReq := models.CreateTemplateRequest{
		Name:        "Employment Contract",
		Description: "Standard employment agreement",
		Category:    "employment_contract",
		Content:     models.JSONContent(`{"body":"Employer and employee agree..."}`),
		Fields: []models.TemplateField{
			{Name: "salary", Label: "Salary", Type: "number", Required: true},
			{Name: "start_date", Label: "Start date", Type: "date", Required: true},
		},
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/templates",
		createReq,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var template models.Template
	err := json.Unmarshal(w.Body.Bytes(), &template)
	assert.NoError(t, err)
	assert.NotEmpty(t, template.ID)
	assert.True(t, template.IsPublic)
	assert.Equal(t, 0, template.UsageCount)

	// Test case 2: Invalid request (unknown category)
	invalidReq := models.CreateTemplateRequest{
		Name:        "Bad Template",
		Description: "Invalid category",
		Category:    "unknown_category",
		Content:     models.JSONContent(`{}`),
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/templates",
		invalidReq,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 3: Unauthorized request (no token)
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/templates",
		createReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTemplateVisibility(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Create a private template as the test user
	isPublic := false
	createReq := models.CreateTemplateRequest{
		Name:        "Private Will",
		Description: "Not for others",
		Category:    "will",
		Content:     models.JSONContent(`{"body":"Last will and testament"}`),
		IsPublic:    &isPublic,
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/templates",
		createReq,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var template models.Template
	err := json.Unmarshal(w.Body.Bytes(), &template)
	assert.NoError(t, err)

	// Another user cannot read the private template
	_, otherToken := testutils.RegisterUser(t, testCtx.Router, "other@example.com", "Other User")

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/templates/"+template.ID,
		nil,
		testutils.AuthHeaders(otherToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Nor update it
	updateReq := models.UpdateTemplateRequest{Name: "Hijacked"}
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/templates/"+template.ID,
		updateReq,
		testutils.AuthHeaders(otherToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// The private template is absent from the other user's listing
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/templates",
		nil,
		testutils.AuthHeaders(otherToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var templates []models.Template
	err = json.Unmarshal(w.Body.Bytes(), &templates)
	assert.NoError(t, err)
	for _, tpl := range templates {
		assert.NotEqual(t, template.ID, tpl.ID)
	}

	// The owner still sees it
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/templates/"+template.ID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAndDeleteTemplate(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	templateID := testutils.CreateTestTemplate(t, testCtx.Router, testCtx.TestUserJWT)

	// Update name and visibility
	isPublic := false
	updateReq := models.UpdateTemplateRequest{
		Name:     "Renamed Agreement",
		IsPublic: &isPublic,
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/templates/"+templateID,
		updateReq,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var template models.Template
	err := json.Unmarshal(w.Body.Bytes(), &template)
	assert.NoError(t, err)
	assert.Equal(t, "Renamed Agreement", template.Name)
	assert.False(t, template.IsPublic)

	// Delete it
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/templates/"+templateID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Deleted template is gone
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/templates/"+templateID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
