package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestAllSigned(t *testing.T) {
	c := &Contract{
		Parties: []Party{
			{Email: "a@example.com", Signed: true},
			{Email: "b@example.com", Signed: false},
		},
	}

	assert.False(t, c.AllSigned())

	c.Parties[1].Signed = true
	assert.True(t, c.AllSigned())
}

func TestAllSignedNoParties(t *testing.T) {
	// A contract with nobody to sign is never complete
	c := &Contract{}
	assert.False(t, c.AllSigned())
}

func TestPartyForMatchesBoundUser(t *testing.T) {
	c := &Contract{
		Parties: []Party{
			{UserID: ptr("user-1"), Email: "a@example.com", Role: "buyer"},
			{UserID: ptr("user-2"), Email: "b@example.com", Role: "seller"},
		},
	}

	p := c.PartyFor("user-2", "whatever@example.com")
	assert.NotNil(t, p)
	assert.Equal(t, "seller", p.Role)
}

func TestPartyForMatchesUnboundByEmail(t *testing.T) {
	c := &Contract{
		Parties: []Party{
			{Email: "invited@example.com", Role: "witness"},
		},
	}

	p := c.PartyFor("user-9", "Invited@Example.com")
	assert.NotNil(t, p)
	assert.Equal(t, "witness", p.Role)
}

func TestPartyForBoundPartyIgnoresEmailOfOtherUser(t *testing.T) {
	// Once a party is bound to an account, another user with the same
	// email string must not match it
	c := &Contract{
		Parties: []Party{
			{UserID: ptr("user-1"), Email: "a@example.com"},
		},
	}

	assert.Nil(t, c.PartyFor("user-2", "a@example.com"))
}

func TestPartyForNoMatch(t *testing.T) {
	c := &Contract{
		Parties: []Party{
			{UserID: ptr("user-1"), Email: "a@example.com"},
		},
	}

	assert.Nil(t, c.PartyFor("user-3", "c@example.com"))
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()

	c := &Contract{}
	assert.False(t, c.Expired(now))

	past := now.Add(-time.Hour)
	c.ExpiryDate = &past
	assert.True(t, c.Expired(now))

	future := now.Add(time.Hour)
	c.ExpiryDate = &future
	assert.False(t, c.Expired(now))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusPendingSignatures.Terminal())
}
