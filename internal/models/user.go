package models

import "time"

// Роли пользователей (совпадают с api.Role)
const (
	RoleHost       = "host"
	RoleTechnician = "technician"
	RoleSupervisor = "supervisor"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`    // время создания
	LastLogin    *time.Time `json:"last_login"`    // время последнего входа, nil если не входил
	Username     string     `json:"username"`      // уникальный username
	PasswordHash string     `json:"password_hash"` // bcrypt хеш пароля
	Role         string     `json:"role"`          // host, technician или supervisor
	City         string     `json:"city"`          // город техника, пусто для host и supervisor
	ID           int64      `json:"id"`
}

// RefreshToken представляет refresh token пользователя.
// Токен не ротируется: при обновлении выдается только новый access token.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	ID        string    `json:"id"`         // UUID записи
	Token     string    `json:"token"`      // непрозрачное значение токена
	UserID    int64     `json:"user_id"`    // ID пользователя
}
