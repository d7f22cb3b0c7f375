package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage/sqlite"
	"github.com/iudanet/atmtrack/pkg/api"
)

type supervisorEnv struct {
	store   *sqlite.Storage
	handler *SupervisorHandler
	sup     *models.User
	tech    *models.User
	device  *models.Device
}

func setupSupervisor(t *testing.T) *supervisorEnv {
	t.Helper()

	s := setupTestStorage(t)
	tech := createUser(t, s, "tech1", models.RoleTechnician, "Riyadh")
	return &supervisorEnv{
		store:   s,
		handler: NewSupervisorHandler(setupTestLogger(), s),
		sup:     createUser(t, s, "sup", models.RoleSupervisor, ""),
		tech:    tech,
		device:  createDevice(t, s, tech, "INT-1", TypeCleaning1),
	}
}

// serve вызывает handler через ServeMux, чтобы работал r.PathValue
func (e *supervisorEnv) serve(t *testing.T, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSupervisorHandler_Submissions(t *testing.T) {
	env := setupSupervisor(t)
	electrical := createDevice(t, env.store, env.tech, "INT-2", TypeElectrical)

	first := createSubmission(t, env.store, env.tech, env.device, "2026-03-02", models.SubmissionPending)
	second := createSubmission(t, env.store, env.tech, electrical, "2026-03-05", models.SubmissionApproved)

	tests := []struct {
		name  string
		query string
		want  []int64
		code  int
	}{
		{name: "all", query: "", want: []int64{second.ID, first.ID}, code: http.StatusOK},
		{name: "status All is no filter", query: "?status=All", want: []int64{second.ID, first.ID}, code: http.StatusOK},
		{name: "pending", query: "?status=Pending", want: []int64{first.ID}, code: http.StatusOK},
		{name: "device type", query: "?device_type=Electrical", want: []int64{second.ID}, code: http.StatusOK},
		{name: "date range", query: "?date_from=2026-03-03&date_to=2026-03-31", want: []int64{second.ID}, code: http.StatusOK},
		{name: "technician", query: fmt.Sprintf("?technician_id=%d", env.tech.ID), want: []int64{second.ID, first.ID}, code: http.StatusOK},
		{name: "bad technician id", query: "?technician_id=abc", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.handler.Submissions(w, newRequest(t, http.MethodGet, "/api/supervisor/submissions"+tt.query, nil, env.sup))

			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}

			resp := decodeBody[api.SubmissionListResponse](t, w)
			assert.Equal(t, "success", resp.Status)
			assert.Equal(t, len(tt.want), resp.Count)

			ids := make([]int64, 0, len(resp.Submissions))
			for _, s := range resp.Submissions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSupervisorHandler_Submission(t *testing.T) {
	env := setupSupervisor(t)
	sub := createSubmission(t, env.store, env.tech, env.device, "2026-03-02", models.SubmissionPending)
	pattern := "GET /api/supervisor/submissions/{id}"

	w := env.serve(t, pattern, env.handler.Submission,
		newRequest(t, http.MethodGet, fmt.Sprintf("/api/supervisor/submissions/%d", sub.ID), nil, env.sup))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.SubmissionDetailResponse](t, w)
	assert.Equal(t, sub.ID, resp.Submission.ID)
	assert.Equal(t, "tech1", resp.Submission.TechnicianName)
	assert.Equal(t, "Riyadh", resp.Submission.DeviceInfo.City)

	w = env.serve(t, pattern, env.handler.Submission,
		newRequest(t, http.MethodGet, "/api/supervisor/submissions/999", nil, env.sup))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Submission not found", decodeBody[api.ErrorResponse](t, w).Error)
}

func TestSupervisorHandler_Review(t *testing.T) {
	env := setupSupervisor(t)
	sub := createSubmission(t, env.store, env.tech, env.device, "2026-03-02", models.SubmissionPending)

	review := func(action string, body any) *httptest.ResponseRecorder {
		pattern := "PATCH /api/supervisor/submissions/{id}/" + action
		h := env.handler.Approve
		if action == "reject" {
			h = env.handler.Reject
		}
		target := fmt.Sprintf("/api/supervisor/submissions/%d/%s", sub.ID, action)
		return env.serve(t, pattern, h, newRequest(t, http.MethodPatch, target, body, env.sup))
	}

	t.Run("reject requires remarks", func(t *testing.T) {
		w := review("reject", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Remarks are required for rejection", decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("reject requires long remarks", func(t *testing.T) {
		w := review("reject", api.ReviewRequest{Remarks: "   too short "})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Remarks must be at least 10 characters long", decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("reject", func(t *testing.T) {
		w := review("reject", api.ReviewRequest{Remarks: "Photos are missing"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[api.ReviewResponse](t, w)
		assert.Equal(t, "Submission rejected", resp.Message)
		assert.Equal(t, models.SubmissionRejected, resp.Submission.Status)
		require.NotNil(t, resp.Submission.Remarks)
		assert.Equal(t, "Photos are missing", *resp.Submission.Remarks)
	})

	t.Run("reject twice", func(t *testing.T) {
		w := review("reject", api.ReviewRequest{Remarks: "Photos are missing"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Submission is already rejected", decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("approve without remarks keeps stored remarks", func(t *testing.T) {
		w := review("approve", map[string]any{})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[api.ReviewResponse](t, w)
		assert.Equal(t, models.SubmissionApproved, resp.Submission.Status)
		assert.Contains(t, resp.Message, "approved successfully")
		require.NotNil(t, resp.Submission.Remarks)
		assert.Equal(t, "Photos are missing", *resp.Submission.Remarks)
	})

	t.Run("approve twice", func(t *testing.T) {
		w := review("approve", api.ReviewRequest{Remarks: "ok"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Submission is already approved", decodeBody[api.ErrorResponse](t, w).Error)
	})
}

func TestSupervisorHandler_Stats(t *testing.T) {
	env := setupSupervisor(t)
	createSubmission(t, env.store, env.tech, env.device, "2026-03-02", models.SubmissionPending)
	createSubmission(t, env.store, env.tech, env.device, "2026-03-20", models.SubmissionRejected)

	w := httptest.NewRecorder()
	env.handler.Stats(w, newRequest(t, http.MethodGet, "/api/supervisor/dashboard-stats", nil, env.sup))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.SupervisorStats{
		TotalSubmissions:    2,
		PendingSubmissions:  1,
		RejectedSubmissions: 1,
	}, decodeBody[api.SupervisorStats](t, w))
}
