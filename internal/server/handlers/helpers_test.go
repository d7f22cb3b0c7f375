package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage/sqlite"
	"github.com/iudanet/atmtrack/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testJWTConfig = JWTConfig{
	Secret:          []byte("test-secret-key-test-secret-key!"),
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 7 * 24 * time.Hour,
}

const testPassword = "S3cure-pass"

func setupTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func createUser(t *testing.T, s *sqlite.Storage, username, role, city string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		City:         city,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createDevice(t *testing.T, s *sqlite.Storage, tech *models.User, interactionID, deviceType string) *models.Device {
	t.Helper()

	device := &models.Device{
		InteractionID:  interactionID,
		GFMCostCenter:  "CC-" + interactionID,
		Region:         "Central",
		GFMProblemType: "Dirty screen",
		GFMProblemDate: "2026-01-10",
		City:           tech.City,
		Type:           deviceType,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.CreateDevice(context.Background(), device))
	require.NoError(t, s.AssignDevice(context.Background(), tech.ID, device.ID))
	return device
}

func createSubmission(t *testing.T, s *sqlite.Storage, tech *models.User, device *models.Device, visitDate, status string) *models.Submission {
	t.Helper()

	visit, err := time.Parse(time.DateOnly, visitDate)
	require.NoError(t, err)

	submission := &models.Submission{
		TechnicianID: tech.ID,
		DeviceID:     device.ID,
		Type:         device.Type,
		VisitDate:    visitDate,
		HalfMonth:    models.HalfMonth(visit),
		JobStatus:    api.JobOk,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateSubmission(context.Background(), submission))
	return submission
}

// newRequest создает запрос с JSON телом и пользователем в контексте (nil user без авторизации)
func newRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(WithUser(req.Context(), &CustomClaims{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		}))
	}
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}
