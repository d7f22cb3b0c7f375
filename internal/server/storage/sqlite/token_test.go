package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
)

func newRefreshToken(userID int64, ttl time.Duration) *models.RefreshToken {
	return &models.RefreshToken{
		ID:        uuid.New().String(),
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
}

func TestTokenStorage_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	user := createTestUser(t, s, "tech1", models.RoleTechnician, "Riyadh")

	token := newRefreshToken(user.ID, 24*time.Hour)
	require.NoError(t, s.SaveRefreshToken(ctx, token))

	got, err := s.GetRefreshToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, time.Second)

	_, err = s.GetRefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_SaveUnknownUser(t *testing.T) {
	s := setupTestStorage(t)

	err := s.SaveRefreshToken(context.Background(), newRefreshToken(42, time.Hour))
	assert.Error(t, err)
}

func TestTokenStorage_DeletedWithUser(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	user := createTestUser(t, s, "tech1", models.RoleTechnician, "Riyadh")
	other := createTestUser(t, s, "tech2", models.RoleTechnician, "Riyadh")

	token := newRefreshToken(user.ID, time.Hour)
	require.NoError(t, s.SaveRefreshToken(ctx, token))
	keep := newRefreshToken(other.ID, time.Hour)
	require.NoError(t, s.SaveRefreshToken(ctx, keep))

	require.NoError(t, s.DeleteUser(ctx, user.ID))

	_, err := s.GetRefreshToken(ctx, token.Token)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = s.GetRefreshToken(ctx, keep.Token)
	assert.NoError(t, err)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	user := createTestUser(t, s, "tech1", models.RoleTechnician, "Riyadh")

	expired := newRefreshToken(user.ID, -time.Hour)
	valid := newRefreshToken(user.ID, time.Hour)
	require.NoError(t, s.SaveRefreshToken(ctx, expired))
	require.NoError(t, s.SaveRefreshToken(ctx, valid))

	deleted, err := s.DeleteExpiredTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = s.GetRefreshToken(ctx, expired.Token)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	_, err = s.GetRefreshToken(ctx, valid.Token)
	assert.NoError(t, err)
}

func TestTokenStorage_DeleteExpiredTokensAt(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	user := createTestUser(t, s, "tech1", models.RoleTechnician, "Riyadh")

	require.NoError(t, s.SaveRefreshToken(ctx, newRefreshToken(user.ID, time.Hour)))
	require.NoError(t, s.SaveRefreshToken(ctx, newRefreshToken(user.ID, 3*time.Hour)))

	deleted, err := s.DeleteExpiredTokens(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
