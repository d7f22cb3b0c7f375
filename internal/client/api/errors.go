package api

import "fmt"

// ResponseError ответ сервера с не-2xx статусом
type ResponseError struct {
	Body       []byte
	StatusCode int
}

func (e *ResponseError) Error() string {
	if msg, ok := ExtractMessage(e.Body); ok {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, string(e.Body))
}

// Message возвращает сообщение для пользователя: из тела ответа,
// а если его нет, то сообщение по умолчанию для статуса
func (e *ResponseError) Message() string {
	if msg, ok := ExtractMessage(e.Body); ok {
		return msg
	}
	return StatusMessage(e.StatusCode)
}
