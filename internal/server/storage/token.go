package storage

import (
	"context"
	"time"

	"github.com/iudanet/atmtrack/internal/models"
)

// TokenStorage хранит refresh токены, выданные при логине.
// Токены не ротируются, удаляются вместе с пользователем или по истечении.
type TokenStorage interface {
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken returns ErrTokenNotFound for unknown values
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteExpiredTokens removes tokens that expired before the moment
	// and returns how many were deleted
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int, error)
}
