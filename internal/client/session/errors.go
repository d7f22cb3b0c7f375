package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/atmtrack/pkg/api"
)

var (
	// ErrNoSession возвращается, когда операции нужна активная сессия
	ErrNoSession = errors.New("no active session")

	// ErrInvalidToken access token не разбирается или не содержит exp
	ErrInvalidToken = errors.New("invalid access token")

	// ErrInvalidUser запись пользователя неполная или с неизвестной ролью
	ErrInvalidUser = errors.New("invalid user record")

	// ErrRefreshFailed обновление токена не удалось, сессия завершена
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrLoading сессия еще восстанавливается
	ErrLoading = errors.New("session is still loading")

	// ErrNotAuthenticated пользователь не вошел в систему
	ErrNotAuthenticated = errors.New("not authenticated")
)

// LoginError описывает отказ во входе. Error() возвращает сообщение,
// пригодное для показа пользователю.
type LoginError struct {
	Err     error
	Message string
	Status  int // 0, если ответ от сервера не получен
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// ForbiddenError роль пользователя не входит в разрешенные
type ForbiddenError struct {
	Role    api.Role
	Allowed []api.Role
}

func (e *ForbiddenError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, r := range e.Allowed {
		allowed = append(allowed, string(r))
	}
	return fmt.Sprintf("role %q is not allowed (requires %s)", e.Role, strings.Join(allowed, " or "))
}
