package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRevocationList is an in-memory RevocationList for tests
type memoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevocationList() *memoryRevocationList {
	return &memoryRevocationList{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (m *memoryRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.revoked[tokenID]
	return ok && time.Now().Before(expiry), nil
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "coinwatch", time.Hour, nil)
	ctx := context.Background()

	userID := uuid.New()
	token, err := svc.Issue(ctx, userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "coinwatch", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_ValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", "coinwatch", time.Hour, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "not a jwt", token: "not-a-token"},
		{name: "truncated jwt", token: "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_ValidateRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	issuing := NewJWTService("secret-a", "coinwatch", time.Hour, nil)
	validating := NewJWTService("secret-b", "coinwatch", time.Hour, nil)

	token, err := issuing.Issue(ctx, uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = validating.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService("test-secret", "coinwatch", -time.Minute, nil)

	token, err := svc.Issue(ctx, uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Revoke(t *testing.T) {
	ctx := context.Background()
	revoked := newMemoryRevocationList()
	svc := NewJWTService("test-secret", "coinwatch", time.Hour, revoked)

	token, err := svc.Issue(ctx, uuid.New(), "user@example.com")
	require.NoError(t, err)

	// Valid before revocation
	_, err = svc.Validate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestJWTService_RevokeWithoutListIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService("test-secret", "coinwatch", time.Hour, nil)

	token, err := svc.Issue(ctx, uuid.New(), "user@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	// Still valid, no revocation list configured
	_, err = svc.Validate(ctx, token)
	assert.NoError(t, err)
}
