package maintenance

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/atmtrack/internal/client/api"
	"github.com/iudanet/atmtrack/internal/client/gateway"
	"github.com/iudanet/atmtrack/pkg/api"
)

// newTestService создает сервис поверх шлюза и тестового сервера
func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := &gateway.SessionMock{
		AccessTokenFunc: func() (string, bool) { return "token", true },
		RefreshFunc:     func(ctx context.Context) error { return nil },
		LogoutFunc:      func(ctx context.Context) error { return nil },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.New(clientapi.NewClient(server.URL), sess, logger)
	return NewService(gw)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestService_Devices(t *testing.T) {
	tests := []struct {
		filter    DeviceFilter
		wantQuery string
		name      string
	}{
		{name: "no filter", filter: DeviceFilter{}, wantQuery: ""},
		{name: "all type omitted", filter: DeviceFilter{Type: "All"}, wantQuery: ""},
		{name: "type and region", filter: DeviceFilter{Type: "Cleaning", Region: "West"}, wantQuery: "status=West&type=Cleaning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/technician/devices", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

				writeJSON(t, w, http.StatusOK, api.DeviceListResponse{
					Count:   1,
					Devices: []api.Device{{ID: 1, InteractionID: "INT-1", SubmissionStatus: api.DevicePending}},
				})
			})

			resp, err := svc.Devices(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Count)
			assert.Equal(t, "INT-1", resp.Devices[0].InteractionID)
		})
	}
}

func TestService_Submissions(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/supervisor/submissions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Pending", q.Get("status"))
		assert.Empty(t, q.Get("device_type"))
		assert.Equal(t, "12", q.Get("technician_id"))
		assert.Equal(t, "2026-01-01", q.Get("date_from"))
		assert.Equal(t, "2026-01-31", q.Get("date_to"))

		writeJSON(t, w, http.StatusOK, api.SubmissionListResponse{
			Status:      "success",
			Count:       1,
			Submissions: []api.Submission{{ID: 5, Status: api.SubmissionPending}},
		})
	})

	resp, err := svc.Submissions(context.Background(), SubmissionFilter{
		Status:       api.SubmissionPending,
		DeviceType:   "all",
		TechnicianID: 12,
		DateFrom:     "2026-01-01",
		DateTo:       "2026-01-31",
	})
	require.NoError(t, err)
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, int64(5), resp.Submissions[0].ID)
}

func TestService_Submission(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/supervisor/submissions/5" {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Submission not found"})
			return
		}
		writeJSON(t, w, http.StatusOK, api.SubmissionDetailResponse{
			Status:     "success",
			Submission: api.Submission{ID: 5, TechnicianName: "tech1"},
		})
	})

	sub, err := svc.Submission(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "tech1", sub.TechnicianName)

	_, err = svc.Submission(context.Background(), 6)
	require.Error(t, err)
	assert.True(t, gateway.IsKind(err, gateway.KindAPI))
	assert.Equal(t, "Submission not found", err.Error())

	_, err = svc.Submission(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestService_Approve(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/supervisor/submissions/5/approve", r.URL.Path)

		var req api.ReviewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "", req.Remarks)

		writeJSON(t, w, http.StatusOK, api.ReviewResponse{
			Status:     "success",
			Message:    "Submission approved successfully",
			Submission: api.Submission{ID: 5, Status: api.SubmissionApproved},
		})
	})

	resp, err := svc.Approve(context.Background(), 5, "")
	require.NoError(t, err)
	assert.Equal(t, api.SubmissionApproved, resp.Submission.Status)
}

func TestService_Reject(t *testing.T) {
	var calls int
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/supervisor/submissions/5/reject", r.URL.Path)

		var req api.ReviewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Photos are blurry", req.Remarks)

		writeJSON(t, w, http.StatusOK, api.ReviewResponse{
			Status:     "success",
			Message:    "Submission rejected",
			Submission: api.Submission{ID: 5, Status: api.SubmissionRejected},
		})
	})
	ctx := context.Background()

	_, err := svc.Reject(ctx, 5, "   ")
	assert.ErrorIs(t, err, ErrRemarksRequired)

	_, err = svc.Reject(ctx, 5, "blurry")
	assert.ErrorIs(t, err, ErrRemarksTooShort)
	assert.Equal(t, 0, calls)

	resp, err := svc.Reject(ctx, 5, "Photos are blurry")
	require.NoError(t, err)
	assert.Equal(t, api.SubmissionRejected, resp.Submission.Status)
	assert.Equal(t, 1, calls)
}

func TestService_Stats(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/supervisor/dashboard-stats":
			writeJSON(t, w, http.StatusOK, api.SupervisorStats{TotalSubmissions: 3, PendingSubmissions: 2, ApprovedSubmissions: 1})
		case "/host/dashboard-stats":
			writeJSON(t, w, http.StatusOK, api.HostStats{
				TotalTechnicians:       1,
				TotalDevices:           7,
				TechniciansWithDevices: []api.TechnicianDevices{{ID: 2, Username: "tech1", DeviceCount: 7}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	sup, err := svc.SupervisorStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sup.PendingSubmissions)

	host, err := svc.HostStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, host.TotalDevices)
	assert.Equal(t, "tech1", host.TechniciansWithDevices[0].Username)
}

func TestService_Technicians(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/host/technicians/":
			writeJSON(t, w, http.StatusOK, []api.Technician{{ID: 2, Username: "tech1", Role: api.RoleTechnician, City: "Pune"}})
		case r.Method == http.MethodPost && r.URL.Path == "/host/technicians/":
			var req api.CreateTechnicianRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Username == "tech1" {
				writeJSON(t, w, http.StatusBadRequest, map[string][]string{
					"username": {"A user with that username already exists."},
				})
				return
			}
			writeJSON(t, w, http.StatusCreated, api.Technician{ID: 3, Username: req.Username, City: req.City, Role: api.RoleTechnician})
		case r.Method == http.MethodDelete && r.URL.Path == "/host/technicians/3/":
			writeJSON(t, w, http.StatusOK, api.MessageResponse{Message: "Technician deleted"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	list, err := svc.Technicians(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pune", list[0].City)

	created, err := svc.CreateTechnician(ctx, api.CreateTechnicianRequest{Username: "tech2", Password: "secret123", City: "Delhi"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	_, err = svc.CreateTechnician(ctx, api.CreateTechnicianRequest{Username: "tech1", Password: "secret123", City: "Delhi"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"username": "A user with that username already exists."}, gateway.FieldErrors(err))

	require.NoError(t, svc.DeleteTechnician(ctx, 3))
	assert.ErrorIs(t, svc.DeleteTechnician(ctx, -1), ErrInvalidID)
}

func TestService_Submit(t *testing.T) {
	var calls int
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/technician/submit", r.URL.Path)

		var req api.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.VisitDate == "2026-03-12" {
			writeJSON(t, w, http.StatusBadRequest, api.ErrorResponse{
				NonFieldErrors: []string{"You have already submitted for this device in half 1 of March 2026"},
			})
			return
		}
		assert.Equal(t, "Cleaned", req.Remarks)

		writeJSON(t, w, http.StatusCreated, api.SubmitResponse{
			Message:    "Maintenance submission created successfully",
			Submission: api.Submission{ID: 9, Device: req.DeviceID, VisitDate: req.VisitDate, HalfMonth: 1, Status: api.SubmissionPending},
		})
	})
	ctx := context.Background()

	invalid := []struct {
		name    string
		req     api.SubmitRequest
		wantErr error
	}{
		{name: "no device", req: api.SubmitRequest{VisitDate: "2026-03-09", JobStatus: api.JobOk}, wantErr: ErrInvalidID},
		{name: "bad date", req: api.SubmitRequest{DeviceID: 4, VisitDate: "09.03.2026", JobStatus: api.JobOk}, wantErr: ErrInvalidVisitDate},
		{name: "bad job status", req: api.SubmitRequest{DeviceID: 4, VisitDate: "2026-03-09", JobStatus: "ok"}, wantErr: ErrInvalidJobStatus},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, calls)

	resp, err := svc.Submit(ctx, api.SubmitRequest{DeviceID: 4, VisitDate: "2026-03-09", JobStatus: api.JobNotOk, Remarks: "  Cleaned "})
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.Submission.ID)
	assert.Equal(t, api.SubmissionPending, resp.Submission.Status)

	_, err = svc.Submit(ctx, api.SubmitRequest{DeviceID: 4, VisitDate: "2026-03-12", JobStatus: api.JobOk, Remarks: "Cleaned"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already submitted")
}

func TestService_ImportDevices(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/host/upload-excel":
			var req api.DeviceImportRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "march.xlsx", req.FileName)
			assert.Equal(t, api.TypeSecurity, req.DeviceType)

			writeJSON(t, w, http.StatusCreated, api.DeviceImportResponse{
				Status:         "success",
				UploadID:       3,
				FileName:       req.FileName,
				TotalRows:      len(req.Rows),
				DevicesCreated: len(req.Rows),
				Data:           req.Rows,
				Technician:     api.UploadTechnician{ID: req.TechnicianID, Username: "tech1"},
			})
		case r.URL.Path == "/host/technicians/2/uploaded-types":
			writeJSON(t, w, http.StatusOK, api.UploadedTypesResponse{TechnicianID: 2, Types: []string{api.TypeSecurity}})
		case r.URL.Path == "/host/technicians/2/uploaded-files":
			writeJSON(t, w, http.StatusOK, api.UploadedFilesResponse{
				TechnicianID: 2,
				Count:        1,
				Files:        []api.DeviceUpload{{ID: 3, FileName: "march.xlsx", DeviceType: api.TypeSecurity, RowCount: 2}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	rows := []api.DeviceRow{{InteractionID: "IM-1"}, {InteractionID: "IM-2"}}

	_, err := svc.ImportDevices(ctx, api.DeviceImportRequest{FileName: "march.xlsx", Rows: rows})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.ImportDevices(ctx, api.DeviceImportRequest{TechnicianID: 2, FileName: "march.xlsx"})
	assert.ErrorIs(t, err, ErrNoRows)

	resp, err := svc.ImportDevices(ctx, api.DeviceImportRequest{
		TechnicianID: 2,
		FileName:     "march.xlsx",
		DeviceType:   api.TypeSecurity,
		Rows:         rows,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.UploadID)
	assert.Equal(t, 2, resp.DevicesCreated)
	assert.Equal(t, "tech1", resp.Technician.Username)

	types, err := svc.UploadedTypes(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{api.TypeSecurity}, types.Types)

	files, err := svc.UploadedFiles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, files.Files, 1)
	assert.Equal(t, "march.xlsx", files.Files[0].FileName)

	_, err = svc.UploadedFiles(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
}
