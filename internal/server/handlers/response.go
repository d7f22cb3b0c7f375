package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/atmtrack/pkg/api"
)

// Сообщения об ошибках в формате Django REST framework
const (
	MsgNotAuthenticated = "Authentication credentials were not provided."
	MsgTokenInvalid     = "Token is invalid or expired"
	MsgForbidden        = "You do not have permission to perform this action."
	MsgFieldRequired    = "This field is required."
	MsgInternal         = "Internal server error"
)

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteDetail отправляет ошибку вида {"detail": "..."}
func WriteDetail(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	WriteJSON(w, logger, api.ErrorResponse{Detail: message}, statusCode)
}

// writeError отправляет ошибку вида {"error": "..."}
func writeError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	WriteJSON(w, logger, api.ErrorResponse{Error: message}, statusCode)
}

// writeFieldErrors отправляет ошибки валидации полей со статусом 400
func writeFieldErrors(w http.ResponseWriter, logger *slog.Logger, fields map[string][]string) {
	WriteJSON(w, logger, fields, http.StatusBadRequest)
}

// decodeJSON разбирает тело запроса, отвечая 400 при ошибке
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request", slog.Any("error", err))
		WriteDetail(w, logger, "JSON parse error - "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
