package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/covenantlabs/covenant-server/internal/api/testutils"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/stretchr/testify/assert"
)

// createTwoPartyContract sets up a contract between partya and partyb,
// created by the default test user, and returns it.
func createTwoPartyContract(t *testing.T, testCtx *testutils.TestContext) models.Contract {
	templateID := testutils.CreateTestTemplate(t, testCtx.Router, testCtx.TestUserJWT)

	createReq := models.CreateContractRequest{
		Title:      "Partnership Agreement",
		TemplateID: templateID,
		Content:    models.JSONContent(`{"terms":"50/50 split","duration":"2 years"}`),
		Parties: []models.PartyRequest{
			{Email: "partya@example.com", Role: "partner"},
			{Email: "partyb@example.com", Role: "partner"},
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

	return contract
}

func TestSigningFlow(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, tokenA := testutils.RegisterUser(t, testCtx.Router, "partya@example.com", "Party A")
	_, tokenB := testutils.RegisterUser(t, testCtx.Router, "partyb@example.com", "Party B")

	contract := createTwoPartyContract(t, testCtx)

	signReq := models.SignContractRequest{SignatureHash: "0xsignature-a"}

	// First party signs: contract stays pending, their party is marked
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		signReq,
		testutils.AuthHeaders(tokenA),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var afterA models.Contract
	err := json.Unmarshal(w.Body.Bytes(), &afterA)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingSignatures, afterA.Status)

	signedCount := 0
	for _, p := range afterA.Parties {
		if p.Signed {
			signedCount++
			assert.NotNil(t, p.SignatureTimestamp)
			assert.Equal(t, "0xsignature-a", p.SignatureHash)
		}
	}
	assert.Equal(t, 1, signedCount)
	assert.False(t, afterA.Blockchain.Stored)
	assert.Empty(t, afterA.DocumentHash)

	// Signing again is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		signReq,
		testutils.AuthHeaders(tokenA),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// A non-party cannot sign
	_, strangerToken := testutils.RegisterUser(t, testCtx.Router, "stranger@example.com", "Stranger")
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		models.SignContractRequest{SignatureHash: "0xforged"},
		testutils.AuthHeaders(strangerToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Last party signs: contract completes and is anchored on the ledger
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		models.SignContractRequest{SignatureHash: "0xsignature-b"},
		testutils.AuthHeaders(tokenB),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var completed models.Contract
	err = json.Unmarshal(w.Body.Bytes(), &completed)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.NotEmpty(t, completed.DocumentHash)
	assert.True(t, completed.Blockchain.Stored)
	assert.Regexp(t, "^0x[0-9a-f]{64}$", completed.Blockchain.TransactionHash)
	assert.NotNil(t, completed.Blockchain.Timestamp)
	assert.Equal(t, "Ethereum (Simulated)", completed.Blockchain.Network)

	for _, p := range completed.Parties {
		assert.True(t, p.Signed)
	}

	// History records the whole lifecycle
	actions := make([]string, 0, len(completed.History))
	for _, h := range completed.History {
		actions = append(actions, h.Action)
	}
	assert.Contains(t, actions, "created")
	assert.Contains(t, actions, "signed")
	assert.Contains(t, actions, "completed")

	// Completed contracts are immutable
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/contracts/"+contract.ID,
		models.UpdateContractRequest{Title: "Too late"},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/contracts/"+contract.ID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Signing a completed contract is rejected
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		models.SignContractRequest{SignatureHash: "0xagain"},
		testutils.AuthHeaders(tokenB),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Both parties were told about the completion
	for _, token := range []string{tokenA, tokenB} {
		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodGet,
			"/api/notifications",
			nil,
			testutils.AuthHeaders(token),
		)

		assert.Equal(t, http.StatusOK, w.Code)

		var notifications []models.Notification
		err = json.Unmarshal(w.Body.Bytes(), &notifications)
		assert.NoError(t, err)

		found := false
		for _, n := range notifications {
			if n.Type == models.NotificationContractCompleted && n.ContractID != nil && *n.ContractID == contract.ID {
				found = true
			}
		}
		assert.True(t, found, "expected a completion notification")
	}
}

func TestSignExpiredContract(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, tokenA := testutils.RegisterUser(t, testCtx.Router, "partya@example.com", "Party A")
	testutils.RegisterUser(t, testCtx.Router, "partyb@example.com", "Party B")

	contract := createTwoPartyContract(t, testCtx)

	// Pull the expiry into the past
	past := time.Now().UTC().Add(-time.Hour)
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/contracts/"+contract.ID,
		models.UpdateContractRequest{ExpiryDate: &past},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Signing now fails and flips the contract to expired
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		models.SignContractRequest{SignatureHash: "0xtoolate"},
		testutils.AuthHeaders(tokenA),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/contracts/"+contract.ID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var expired models.Contract
	err := json.Unmarshal(w.Body.Bytes(), &expired)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusExpired, expired.Status)
}

func TestCreatorSignsOnlyWhenListed(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	testutils.RegisterUser(t, testCtx.Router, "partya@example.com", "Party A")
	templateID := testutils.CreateTestTemplate(t, testCtx.Router, testCtx.TestUserJWT)

	// The creator is not among the parties here
	createReq := models.CreateContractRequest{
		Title:      "One-sided NDA",
		TemplateID: templateID,
		Content:    models.JSONContent(`{"scope":"everything"}`),
		Parties: []models.PartyRequest{
			{Email: "partya@example.com", Role: "recipient"},
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

	// Creating does not make the creator a signer
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/contracts/"+contract.ID+"/sign",
		models.SignContractRequest{SignatureHash: "0xcreator"},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
