package api

// Role определяет роль пользователя в системе обслуживания банкоматов
type Role string

const (
	RoleHost       Role = "host"       // администратор данных (учетные записи, списки устройств)
	RoleTechnician Role = "technician" // техник, выезжающий на устройства
	RoleSupervisor Role = "supervisor" // супервайзер, утверждающий отчеты
)

// Valid сообщает, является ли роль одной из известных
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleTechnician, RoleSupervisor:
		return true
	}
	return false
}

// User представляет аутентифицированного пользователя
type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	City     string `json:"city"`
	ID       int64  `json:"id"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с парой токенов и данными пользователя
type LoginResponse struct {
	Access  string `json:"access"`  // JWT access token
	Refresh string `json:"refresh"` // refresh token
	User    User   `json:"user"`
}

// RefreshRequest представляет запрос на обновление access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse представляет ответ с новым access token.
// Refresh token не ротируется.
type RefreshResponse struct {
	Access string `json:"access"`
}

// ErrorResponse представляет ответ с ошибкой в формате Django REST framework.
// Поля валидации конкретных полей (username, password, ...) приходят как
// дополнительные ключи со списком сообщений, поэтому клиент разбирает тело ответа
// как произвольный JSON объект, а не через эту структуру.
type ErrorResponse struct {
	Detail         string   `json:"detail,omitempty"`
	Error          string   `json:"error,omitempty"`
	Message        string   `json:"message,omitempty"`
	NonFieldErrors []string `json:"non_field_errors,omitempty"`
}
