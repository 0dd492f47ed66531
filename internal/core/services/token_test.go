package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").GenerateToken("u1")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_Garbage(t *testing.T) {
	_, err := NewTokenService("test-secret").ValidateToken("not.a.token")
	assert.Error(t, err)
}
