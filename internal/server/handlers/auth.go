package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/pkg/api"
)

// MsgInvalidCredentials ответ на неверную пару username/password
const MsgInvalidCredentials = "Invalid username or password"

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	jwtConfig    JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwtConfig:    jwtConfig,
	}
}

// Login обрабатывает POST /api/auth/login
// Проверяет пароль и выдает access и refresh токены вместе с данными пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	// Проверка обязательных полей
	fields := make(map[string][]string)
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = []string{MsgFieldRequired}
	}
	if req.Password == "" {
		fields["password"] = []string{MsgFieldRequired}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, h.logger, fields)
		return
	}

	user, err := h.userStorage.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", req.Username))
			h.invalidCredentials(w)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", req.Username))
		h.invalidCredentials(w)
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtConfig, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	token := &models.RefreshToken{
		ID:        uuid.New().String(),
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role))

	resp := api.LoginResponse{
		Access:  accessToken,
		Refresh: refreshToken,
		User:    toAPIUser(user),
	}
	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/token/refresh
// Выдает новый access token. Refresh token не ротируется.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if req.Refresh == "" {
		writeFieldErrors(w, h.logger, map[string][]string{"refresh": {MsgFieldRequired}})
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			h.tokenNotValid(w)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	if time.Now().After(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.Int64("user_id", storedToken.UserID))
		h.tokenNotValid(w)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.tokenNotValid(w)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtConfig, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "access token refreshed", slog.Int64("user_id", user.ID))

	WriteJSON(w, h.logger, api.RefreshResponse{Access: accessToken}, http.StatusOK)
}

func (h *AuthHandler) invalidCredentials(w http.ResponseWriter) {
	WriteJSON(w, h.logger, api.ErrorResponse{NonFieldErrors: []string{MsgInvalidCredentials}}, http.StatusBadRequest)
}

func (h *AuthHandler) tokenNotValid(w http.ResponseWriter) {
	WriteDetail(w, h.logger, MsgTokenInvalid, http.StatusUnauthorized)
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:       u.ID,
		Username: u.Username,
		Role:     api.Role(u.Role),
		City:     u.City,
	}
}
