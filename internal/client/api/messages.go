package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Сообщения для пользователя по умолчанию
const (
	MessageBadRequest         = "Invalid request. Please check your input."
	MessageSessionExpired     = "Your session has expired. Please log in again."
	MessageForbidden          = "You do not have permission to perform this action."
	MessageNotFound           = "The requested resource was not found."
	MessageServerError        = "Server error. Please try again later."
	MessageServiceUnavailable = "Service temporarily unavailable. Please try again later."
	MessageNetwork            = "Network error. Please check your internet connection."
	MessageTimeout            = "Request timeout. Please try again."
	MessageUnknown            = "An unexpected error occurred. Please try again."
	MessageInvalidCredentials = "Invalid username or password"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          MessageBadRequest,
	http.StatusUnauthorized:        MessageSessionExpired,
	http.StatusForbidden:           MessageForbidden,
	http.StatusNotFound:            MessageNotFound,
	http.StatusInternalServerError: MessageServerError,
	http.StatusServiceUnavailable:  MessageServiceUnavailable,
}

// StatusMessage возвращает сообщение по умолчанию для HTTP статуса
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return MessageUnknown
}

// Порядок выбора сообщения из тела ошибки: сначала ошибки, не привязанные
// к полю, затем ошибки полей формы логина, затем общие поля
var messageKeys = []string{"non_field_errors", "username", "password", "detail", "error", "message"}

// maxPlainMessageLen ограничивает длину не-JSON тела, которое показывается как есть
const maxPlainMessageLen = 200

// ExtractMessage достает сообщение для пользователя из тела ответа с ошибкой.
// Понимает формат Django REST framework: {"detail": "..."}, {"non_field_errors": ["..."]},
// {"field": ["..."]}, а также JSON строку и короткий текст.
func ExtractMessage(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", false
	}

	var data any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		// Не JSON: показываем только короткий текст, HTML страницы ошибок пропускаем
		if strings.HasPrefix(trimmed, "<") || len(trimmed) > maxPlainMessageLen {
			return "", false
		}
		return trimmed, true
	}

	switch v := data.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		for _, key := range messageKeys {
			if msg, ok := firstMessage(v[key]); ok {
				return msg, true
			}
		}
		// Остальные поля в стабильном порядке
		for _, key := range sortedKeys(v) {
			if msg, ok := firstMessage(v[key]); ok {
				return msg, true
			}
		}
	}

	return "", false
}

// FieldMessages возвращает первое сообщение для каждого поля из тела ошибки валидации
func FieldMessages(body []byte) map[string]string {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	fields := make(map[string]string, len(data))
	for key, value := range data {
		if msg, ok := firstMessage(value); ok {
			fields[key] = msg
		}
	}
	return fields
}

// firstMessage возвращает строку или первый строковый элемент списка
func firstMessage(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
