package gateway

import (
	"encoding/json"
	"errors"

	clientapi "github.com/iudanet/atmtrack/internal/client/api"
)

// Kind класс ошибки запроса
type Kind string

const (
	// KindNetwork ответ от сервера не получен
	KindNetwork Kind = "network"
	// KindAuth сессию не удалось продлить, пользователь разлогинен
	KindAuth Kind = "auth"
	// KindAPI сервер ответил не-2xx статусом
	KindAPI Kind = "api"
)

// Error нормализованная ошибка запроса. Error() возвращает сообщение для пользователя.
type Error struct {
	Err     error
	Kind    Kind
	Message string
	Data    json.RawMessage // тело ответа сервера, если это JSON
	Status  int             // 0 для KindNetwork
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind сообщает, что err является *Error заданного класса
func IsKind(err error, kind Kind) bool {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind == kind
	}
	return false
}

// Ключи тела ошибки, не относящиеся к конкретному полю
var generalKeys = []string{"detail", "error", "message", "non_field_errors"}

// FieldErrors возвращает ошибки валидации по полям (первое сообщение каждого поля).
// nil, если ошибок полей нет.
func FieldErrors(err error) map[string]string {
	var gwErr *Error
	if !errors.As(err, &gwErr) || len(gwErr.Data) == 0 {
		return nil
	}

	fields := clientapi.FieldMessages(gwErr.Data)
	for _, key := range generalKeys {
		delete(fields, key)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
