package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/pkg/api"
)

func TestHostHandler_ImportDevices(t *testing.T) {
	s := setupTestStorage(t)
	admin := createUser(t, s, "admin", models.RoleHost, "")
	tech := createUser(t, s, "tech1", models.RoleTechnician, "Riyadh")
	supervisor := createUser(t, s, "super", models.RoleSupervisor, "")
	other := createUser(t, s, "tech2", models.RoleTechnician, "Riyadh")
	createDevice(t, s, other, "INT-1", TypeSecurity) // уже есть в базе
	handler := NewHostHandler(setupTestLogger(), s, s, bcrypt.MinCost)

	upload := func(req api.DeviceImportRequest) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ImportDevices(w, newRequest(t, http.MethodPost, "/api/host/upload-excel", req, admin))
		return w
	}

	rows := []api.DeviceRow{
		{InteractionID: "INT-1", GFMCostCenter: "CC-1", City: "Riyadh"},
		{InteractionID: "INT-2", GFMCostCenter: "CC-2", GFMProblemType: "Cash jam", GFMProblemDate: "2026-02-01", Region: "North"},
		{InteractionID: "N/A"},
		{InteractionID: "  "},
	}
	for i := range 12 {
		rows = append(rows, api.DeviceRow{InteractionID: fmt.Sprintf("BULK-%d", i), City: "Riyadh"})
	}

	w := upload(api.DeviceImportRequest{TechnicianID: tech.ID, FileName: "march.xlsx", DeviceType: TypeElectrical, Rows: rows})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[api.DeviceImportResponse](t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "march.xlsx", resp.FileName)
	assert.Equal(t, len(rows), resp.TotalRows)
	assert.Equal(t, 13, resp.DevicesCreated)
	assert.Len(t, resp.Data, api.MaxImportPreviewRows)
	assert.Equal(t, api.UploadTechnician{ID: tech.ID, Username: "tech1", City: "Riyadh"}, resp.Technician)
	assert.Positive(t, resp.UploadID)

	devices, err := s.ListTechnicianDevices(context.Background(), tech.ID, storage.DeviceFilter{})
	require.NoError(t, err)
	require.Len(t, devices, 14)

	byID := make(map[string]*models.Device)
	for _, d := range devices {
		byID[d.InteractionID] = d
	}
	// существующее устройство только назначено
	assert.Equal(t, TypeSecurity, byID["INT-1"].Type)
	// пустой город берется у техника
	require.Contains(t, byID, "INT-2")
	assert.Equal(t, "Riyadh", byID["INT-2"].City)
	assert.Equal(t, TypeElectrical, byID["INT-2"].Type)
	assert.Equal(t, "North", byID["INT-2"].Region)

	uploads, err := s.ListUploads(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	require.NotNil(t, uploads[0].UploadedBy)
	assert.Equal(t, admin.ID, *uploads[0].UploadedBy)

	t.Run("default device type", func(t *testing.T) {
		w := upload(api.DeviceImportRequest{TechnicianID: tech.ID, FileName: "april.xlsx",
			Rows: []api.DeviceRow{{InteractionID: "INT-50"}}})
		require.Equal(t, http.StatusCreated, w.Code)

		types, err := s.UploadedTypes(context.Background(), tech.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{TypeCleaning1, TypeElectrical}, types)
	})

	tests := []struct {
		name   string
		req    api.DeviceImportRequest
		code   int
		errMsg string
	}{
		{
			name:   "missing technician",
			req:    api.DeviceImportRequest{FileName: "a.xlsx", Rows: rows},
			code:   http.StatusBadRequest,
			errMsg: "technician_id is required",
		},
		{
			name:   "missing file name",
			req:    api.DeviceImportRequest{TechnicianID: tech.ID, Rows: rows},
			code:   http.StatusBadRequest,
			errMsg: "No file provided",
		},
		{
			name:   "no rows",
			req:    api.DeviceImportRequest{TechnicianID: tech.ID, FileName: "a.xlsx"},
			code:   http.StatusBadRequest,
			errMsg: "Excel file contains no data rows",
		},
		{
			name:   "unknown technician",
			req:    api.DeviceImportRequest{TechnicianID: 9999, FileName: "a.xlsx", Rows: rows},
			code:   http.StatusNotFound,
			errMsg: "Technician with ID 9999 not found",
		},
		{
			name:   "not a technician",
			req:    api.DeviceImportRequest{TechnicianID: supervisor.ID, FileName: "a.xlsx", Rows: rows},
			code:   http.StatusNotFound,
			errMsg: fmt.Sprintf("Technician with ID %d not found", supervisor.ID),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(tt.req)
			require.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.errMsg, decodeBody[api.ErrorResponse](t, w).Error)
		})
	}

	t.Run("unknown device type", func(t *testing.T) {
		w := upload(api.DeviceImportRequest{TechnicianID: tech.ID, FileName: "a.xlsx", DeviceType: "Plumbing", Rows: rows})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[map[string][]string](t, w), "device_type")
	})
}

func TestHostHandler_UploadHistory(t *testing.T) {
	s := setupTestStorage(t)
	admin := createUser(t, s, "admin", models.RoleHost, "")
	tech := createUser(t, s, "tech1", models.RoleTechnician, "Riyadh")
	handler := NewHostHandler(setupTestLogger(), s, s, bcrypt.MinCost)

	for _, req := range []api.DeviceImportRequest{
		{TechnicianID: tech.ID, FileName: "first.xlsx", DeviceType: TypeSecurity, Rows: []api.DeviceRow{{InteractionID: "INT-1"}}},
		{TechnicianID: tech.ID, FileName: "second.xlsx", DeviceType: TypeCleaning2, Rows: []api.DeviceRow{{InteractionID: "INT-2"}}},
	} {
		w := httptest.NewRecorder()
		handler.ImportDevices(w, newRequest(t, http.MethodPost, "/api/host/upload-excel", req, admin))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/host/technicians/{id}/uploaded-types", handler.UploadedTypes)
	mux.HandleFunc("GET /api/host/technicians/{id}/uploaded-files", handler.UploadedFiles)
	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, newRequest(t, http.MethodGet, target, nil, admin))
		return w
	}

	w := get(fmt.Sprintf("/api/host/technicians/%d/uploaded-types", tech.ID))
	require.Equal(t, http.StatusOK, w.Code)
	types := decodeBody[api.UploadedTypesResponse](t, w)
	assert.Equal(t, tech.ID, types.TechnicianID)
	assert.Equal(t, []string{TypeCleaning2, TypeSecurity}, types.Types)

	w = get(fmt.Sprintf("/api/host/technicians/%d/uploaded-files", tech.ID))
	require.Equal(t, http.StatusOK, w.Code)
	files := decodeBody[api.UploadedFilesResponse](t, w)
	require.Equal(t, 2, files.Count)
	assert.ElementsMatch(t, []string{"first.xlsx", "second.xlsx"},
		[]string{files.Files[0].FileName, files.Files[1].FileName})
	assert.Equal(t, 1, files.Files[0].DevicesCreated)

	assert.Equal(t, http.StatusNotFound, get(fmt.Sprintf("/api/host/technicians/%d/uploaded-files", admin.ID)).Code)
	assert.Equal(t, http.StatusNotFound, get("/api/host/technicians/abc/uploaded-types").Code)
}
