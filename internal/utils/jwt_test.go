package utils

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestClaimTokenRoundTrip(t *testing.T) {
    token, err := NewClaimToken(testSecret, 42, "abc123", 30)
    require.NoError(t, err)

    parsed, err := ParseClaimToken(testSecret, token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), parsed.TicketID)
    assert.Equal(t, "abc123", parsed.ClaimCode)
    assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), parsed.Exp, time.Minute)
}

func TestClaimTokenWrongSecret(t *testing.T) {
    token, err := NewClaimToken(testSecret, 42, "abc123", 30)
    require.NoError(t, err)

    _, err = ParseClaimToken("other-secret", token)
    assert.ErrorIs(t, err, ErrClaimTokenInvalid)
}

func TestClaimTokenGarbage(t *testing.T) {
    _, err := ParseClaimToken(testSecret, "not-a-jwt")
    assert.ErrorIs(t, err, ErrClaimTokenInvalid)
}

func TestClaimTokenExpired(t *testing.T) {
    // TTL of -1 days mints an already expired link.
    token, err := NewClaimToken(testSecret, 42, "abc123", -1)
    require.NoError(t, err)

    _, err = ParseClaimToken(testSecret, token)
    assert.ErrorIs(t, err, ErrClaimTokenExpired)
}

func TestAccessTokenCarriesRoleAndExpiry(t *testing.T) {
    at, err := NewAccessToken(testSecret, 7, "STAFF", 15)
    require.NoError(t, err)
    assert.NotEmpty(t, at.Token)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, time.Minute)
}

func TestHashRefreshRawIsStable(t *testing.T) {
    rt, err := NewRefreshToken(30)
    require.NoError(t, err)

    assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
    assert.Len(t, HashRefreshRaw(rt.Raw), 64)
}
