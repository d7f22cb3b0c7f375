package session

import (
	"context"

	"github.com/iudanet/atmtrack/pkg/api"
)

//go:generate moq -out backend_mock.go . Backend

// Backend описывает эндпоинты аутентификации сервера.
// Реализуется *api.Client из internal/client/api.
type Backend interface {
	// Login обменивает логин и пароль на пару токенов и запись пользователя
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)

	// RefreshToken обменивает refresh token на новый access token
	RefreshToken(ctx context.Context, refreshToken string) (*api.RefreshResponse, error)
}
