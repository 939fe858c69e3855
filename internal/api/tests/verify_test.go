package api_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/covenantlabs/covenant-server/internal/api/testutils"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVerifyContract(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, tokenA := testutils.RegisterUser(t, testCtx.Router, "partya@example.com", "Party A")
	_, tokenB := testutils.RegisterUser(t, testCtx.Router, "partyb@example.com", "Party B")

	contract := createTwoPartyContract(t, testCtx)

	// Verification is public: no token needed. An incomplete contract
	// resolves fine, it is just not verified yet.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/verify/"+contract.VerificationCode,
		nil,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var verification models.VerificationResponse
	err := json.Unmarshal(w.Body.Bytes(), &verification)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingSignatures, verification.Status)
	assert.False(t, verification.IsVerified)
	assert.Empty(t, verification.DocumentHash)
	assert.Equal(t, "Test User", verification.CreatorName)
	assert.Equal(t, "Test Agreement", verification.TemplateName)
	assert.Len(t, verification.Parties, 2)

	// Party emails are masked on a non-public contract
	for _, p := range verification.Parties {
		assert.Contains(t, p.Email, "***")
		assert.False(t, strings.Contains(p.Email, "partya@") || strings.Contains(p.Email, "partyb@"))
	}

	// Complete the contract
	for _, token := range []string{tokenA, tokenB} {
		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/contracts/"+contract.ID+"/sign",
			models.SignContractRequest{SignatureHash: "0xsig"},
			testutils.AuthHeaders(token),
		)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Now the verification view reports a verified, anchored document
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/verify/"+contract.VerificationCode,
		nil,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &verification)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, verification.Status)
	assert.True(t, verification.IsVerified)
	assert.NotEmpty(t, verification.DocumentHash)
	assert.True(t, verification.Blockchain.Stored)
	assert.NotEmpty(t, verification.Blockchain.TransactionHash)

	for _, p := range verification.Parties {
		assert.True(t, p.Signed)
		assert.NotNil(t, p.SignatureTimestamp)
	}

	// The contract id works as an identifier too
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/verify/"+contract.ID,
		nil,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Unknown identifiers are a 404
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/verify/no-such-code",
		nil,
		nil,
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPublicContractShowsEmails(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	testutils.RegisterUser(t, testCtx.Router, "partya@example.com", "Party A")
	templateID := testutils.CreateTestTemplate(t, testCtx.Router, testCtx.TestUserJWT)

	createReq := models.CreateContractRequest{
		Title:      "Public Charter",
		TemplateID: templateID,
		Content:    models.JSONContent(`{"body":"open to all"}`),
		IsPublic:   true,
		Parties: []models.PartyRequest{
			{Email: "partya@example.com", Role: "member"},
		},
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts",
		createReq,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var contract models.Contract
	err := json.Unmarshal(w.Body.Bytes(), &contract)
	assert.NoError(t, err)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/verify/"+contract.VerificationCode,
		nil,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var verification models.VerificationResponse
	err = json.Unmarshal(w.Body.Bytes(), &verification)
	assert.NoError(t, err)
	assert.Equal(t, "partya@example.com", verification.Parties[0].Email)
}
