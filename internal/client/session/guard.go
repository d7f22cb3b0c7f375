package session

import (
	"slices"

	"github.com/iudanet/atmtrack/pkg/api"
)

// Authorize проверяет доступ текущего пользователя.
// Пустой список ролей разрешает любого аутентифицированного пользователя.
func (m *Manager) Authorize(roles ...api.Role) error {
	if m.Loading() {
		return ErrLoading
	}

	user, ok := m.User()
	if !ok {
		return ErrNotAuthenticated
	}

	if len(roles) > 0 && !slices.Contains(roles, user.Role) {
		return &ForbiddenError{Role: user.Role, Allowed: roles}
	}
	return nil
}
