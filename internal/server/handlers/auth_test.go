package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/atmtrack/internal/client/token"
	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/pkg/api"
)

func TestAuthHandler_Login(t *testing.T) {
	s := setupTestStorage(t)
	tech := createUser(t, s, "tech1", models.RoleTechnician, "Riyadh")
	handler := NewAuthHandler(setupTestLogger(), s, s, testJWTConfig)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, newRequest(t, http.MethodPost, "/api/auth/login",
			api.LoginRequest{Username: "tech1", Password: testPassword}, nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[api.LoginResponse](t, w)

		assert.Equal(t, api.User{ID: tech.ID, Username: "tech1", Role: api.RoleTechnician, City: "Riyadh"}, resp.User)
		assert.NotEmpty(t, resp.Refresh)

		// access token читается клиентским декодером
		exp, ok := token.ExpiresAt(token.Decode(resp.Access))
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(testJWTConfig.AccessTokenTTL), exp, 5*time.Second)

		claims, err := ValidateAccessToken(testJWTConfig, resp.Access)
		require.NoError(t, err)
		assert.Equal(t, tech.ID, claims.UserID)
		assert.Equal(t, models.RoleTechnician, claims.Role)

		stored, err := s.GetRefreshToken(context.Background(), resp.Refresh)
		require.NoError(t, err)
		assert.Equal(t, tech.ID, stored.UserID)

		user, err := s.GetUserByID(context.Background(), tech.ID)
		require.NoError(t, err)
		assert.NotNil(t, user.LastLogin)
	})

	tests := []struct {
		name       string
		body       string
		wantFields map[string][]string
		wantNonFld []string
		wantCode   int
	}{
		{
			name:       "wrong password",
			body:       `{"username":"tech1","password":"nope"}`,
			wantCode:   http.StatusBadRequest,
			wantNonFld: []string{MsgInvalidCredentials},
		},
		{
			name:       "unknown user",
			body:       `{"username":"ghost","password":"whatever"}`,
			wantCode:   http.StatusBadRequest,
			wantNonFld: []string{MsgInvalidCredentials},
		},
		{
			name:     "missing fields",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantFields: map[string][]string{
				"username": {MsgFieldRequired},
				"password": {MsgFieldRequired},
			},
		},
		{
			name:     "malformed json",
			body:     `{"username":`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			switch {
			case tt.wantNonFld != nil:
				resp := decodeBody[api.ErrorResponse](t, w)
				assert.Equal(t, tt.wantNonFld, resp.NonFieldErrors)
			case tt.wantFields != nil:
				assert.Equal(t, tt.wantFields, decodeBody[map[string][]string](t, w))
			default:
				resp := decodeBody[api.ErrorResponse](t, w)
				assert.Contains(t, resp.Detail, "JSON parse error")
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	sup := createUser(t, s, "sup", models.RoleSupervisor, "")
	handler := NewAuthHandler(setupTestLogger(), s, s, testJWTConfig)

	login := httptest.NewRecorder()
	handler.Login(login, newRequest(t, http.MethodPost, "/api/auth/login",
		api.LoginRequest{Username: "sup", Password: testPassword}, nil))
	require.Equal(t, http.StatusOK, login.Code)
	session := decodeBody[api.LoginResponse](t, login)

	t.Run("success keeps refresh token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Refresh(w, newRequest(t, http.MethodPost, "/api/auth/token/refresh",
			api.RefreshRequest{Refresh: session.Refresh}, nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.NotEmpty(t, resp["access"])
		assert.NotContains(t, resp, "refresh")

		claims, err := ValidateAccessToken(testJWTConfig, resp["access"])
		require.NoError(t, err)
		assert.Equal(t, sup.ID, claims.UserID)

		// тот же refresh token работает повторно
		w = httptest.NewRecorder()
		handler.Refresh(w, newRequest(t, http.MethodPost, "/api/auth/token/refresh",
			api.RefreshRequest{Refresh: session.Refresh}, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing refresh", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Refresh(w, newRequest(t, http.MethodPost, "/api/auth/token/refresh", api.RefreshRequest{}, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string][]string{"refresh": {MsgFieldRequired}}, decodeBody[map[string][]string](t, w))
	})

	t.Run("unknown token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Refresh(w, newRequest(t, http.MethodPost, "/api/auth/token/refresh",
			api.RefreshRequest{Refresh: "unknown"}, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, MsgTokenInvalid, decodeBody[api.ErrorResponse](t, w).Detail)
	})

	t.Run("expired token", func(t *testing.T) {
		require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
			ID:        "expired-id",
			Token:     "expired-token",
			UserID:    sup.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
			CreatedAt: time.Now().Add(-time.Hour),
		}))

		w := httptest.NewRecorder()
		handler.Refresh(w, newRequest(t, http.MethodPost, "/api/auth/token/refresh",
			api.RefreshRequest{Refresh: "expired-token"}, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestValidateAccessToken(t *testing.T) {
	user := &models.User{ID: 3, Username: "admin", Role: models.RoleHost}

	valid, err := GenerateAccessToken(testJWTConfig, user)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(testJWTConfig, valid)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)

	other := testJWTConfig
	other.Secret = []byte("another-secret-another-secret-!!")
	_, err = ValidateAccessToken(other, valid)
	assert.Error(t, err)

	_, err = ValidateAccessToken(testJWTConfig, valid+"x")
	assert.Error(t, err)
}

func TestGenerateRefreshToken(t *testing.T) {
	first, expiresAt, err := GenerateRefreshToken(testJWTConfig)
	require.NoError(t, err)
	second, _, err := GenerateRefreshToken(testJWTConfig)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 43)
	assert.WithinDuration(t, time.Now().Add(testJWTConfig.RefreshTokenTTL), expiresAt, 5*time.Second)
}
