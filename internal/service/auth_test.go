package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testToken = "s3cr3t-api-token-for-tests"

func TestNewAuthService(t *testing.T) {
	t.Run("accepts a strong token", func(t *testing.T) {
		svc, err := NewAuthService(testToken, bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotContains(t, string(svc.tokenHash), testToken)
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"too short", "short"},
		{"too long", strings.Repeat("a", 73)},
		{"whitespace", "token with spaces inside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthService(tt.token, bcrypt.MinCost)
			assert.ErrorIs(t, err, ErrWeakToken)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, err := NewAuthService(testToken, bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		assert.NoError(t, svc.ValidateToken(testToken))
	})

	t.Run("missing token", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidateToken(""), ErrMissingToken)
	})

	t.Run("wrong token", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidateToken("s3cr3t-api-token-for-test"), ErrInvalidToken)
	})

	t.Run("oversized token", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidateToken(testToken+strings.Repeat("x", 80)), ErrInvalidToken)
	})
}
