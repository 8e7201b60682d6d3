package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing token")
	ErrWeakToken    = errors.New("token does not meet requirements")
)

const (
	minTokenLength = 16
	// bcrypt ignores everything past 72 bytes.
	maxTokenLength = 72
)

func validateTokenStrength(token string) error {
	if len(token) < minTokenLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakToken, minTokenLength)
	}
	if len(token) > maxTokenLength {
		return fmt.Errorf("%w: must be at most %d bytes", ErrWeakToken, maxTokenLength)
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("%w: must not contain whitespace", ErrWeakToken)
	}
	return nil
}

// AuthService checks bearer tokens against the configured API token. Only
// the bcrypt hash of the token is kept in memory.
type AuthService struct {
	tokenHash []byte
}

func NewAuthService(token string, cost int) (*AuthService, error) {
	if err := validateTokenStrength(token); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return nil, fmt.Errorf("hash api token: %w", err)
	}
	return &AuthService{tokenHash: hash}, nil
}

func (s *AuthService) ValidateToken(candidate string) error {
	if candidate == "" {
		return ErrMissingToken
	}
	if len(candidate) > maxTokenLength {
		return ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword(s.tokenHash, []byte(candidate)); err != nil {
		return ErrInvalidToken
	}
	return nil
}
