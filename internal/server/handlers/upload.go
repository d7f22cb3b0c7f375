package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/pkg/api"
)

// ImportDevices обрабатывает POST /api/host/upload-excel
// Создает отсутствующие устройства и закрепляет все строки за техником.
// Строки без interaction id или с "N/A" пропускаются.
func (h *HostHandler) ImportDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.DeviceImportRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if req.TechnicianID <= 0 {
		writeError(w, h.logger, "technician_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		writeError(w, h.logger, "No file provided", http.StatusBadRequest)
		return
	}
	deviceType := strings.TrimSpace(req.DeviceType)
	if deviceType == "" {
		deviceType = TypeCleaning1
	}
	if !slices.Contains(api.DeviceTypes, deviceType) {
		writeFieldErrors(w, h.logger, map[string][]string{
			"device_type": {fmt.Sprintf("%q is not a valid choice.", deviceType)},
		})
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, h.logger, "Excel file contains no data rows", http.StatusBadRequest)
		return
	}

	tech, ok := h.technician(w, r, req.TechnicianID)
	if !ok {
		return
	}

	now := time.Now()
	devices := make([]*models.Device, 0, len(req.Rows))
	for _, row := range req.Rows {
		id := strings.TrimSpace(row.InteractionID)
		if id == "" || id == "N/A" {
			continue
		}
		// без города устройство не попадет в список техника
		city := strings.TrimSpace(row.City)
		if city == "" {
			city = tech.City
		}
		devices = append(devices, &models.Device{
			InteractionID:  id,
			GFMCostCenter:  strings.TrimSpace(row.GFMCostCenter),
			Region:         strings.TrimSpace(row.Region),
			GFMProblemType: strings.TrimSpace(row.GFMProblemType),
			GFMProblemDate: strings.TrimSpace(row.GFMProblemDate),
			City:           city,
			Type:           deviceType,
			CreatedAt:      now,
		})
	}

	upload := &models.DeviceUpload{
		TechnicianID: tech.ID,
		FileName:     strings.TrimSpace(req.FileName),
		DeviceType:   deviceType,
		RowCount:     len(req.Rows),
		CreatedAt:    now,
	}
	if hostID, ok := GetUserID(ctx); ok {
		upload.UploadedBy = &hostID
	}

	if err := h.maintenance.ImportDevices(ctx, upload, devices); err != nil {
		h.logger.ErrorContext(ctx, "failed to import devices", slog.Any("error", err))
		writeError(w, h.logger, "Unexpected error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "devices imported",
		slog.Int64("upload_id", upload.ID),
		slog.Int64("technician_id", tech.ID),
		slog.Int("rows", upload.RowCount),
		slog.Int("devices_created", upload.DevicesCreated))

	preview := req.Rows
	if len(preview) > api.MaxImportPreviewRows {
		preview = preview[:api.MaxImportPreviewRows]
	}

	WriteJSON(w, h.logger, api.DeviceImportResponse{
		Status:         "success",
		Message:        "Excel file uploaded and devices created successfully",
		UploadID:       upload.ID,
		FileName:       upload.FileName,
		TotalRows:      upload.RowCount,
		DevicesCreated: upload.DevicesCreated,
		Data:           preview,
		Technician: api.UploadTechnician{
			ID:       tech.ID,
			Username: tech.Username,
			City:     tech.City,
		},
	}, http.StatusCreated)
}

// UploadedTypes обрабатывает GET /api/host/technicians/{id}/uploaded-types
func (h *HostHandler) UploadedTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tech, ok := h.technicianFromPath(w, r)
	if !ok {
		return
	}

	types, err := h.maintenance.UploadedTypes(ctx, tech.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list uploaded types", slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch uploaded types: "+err.Error(), http.StatusInternalServerError)
		return
	}

	WriteJSON(w, h.logger, api.UploadedTypesResponse{TechnicianID: tech.ID, Types: types}, http.StatusOK)
}

// UploadedFiles обрабатывает GET /api/host/technicians/{id}/uploaded-files
// Новые импорты первыми
func (h *HostHandler) UploadedFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tech, ok := h.technicianFromPath(w, r)
	if !ok {
		return
	}

	uploads, err := h.maintenance.ListUploads(ctx, tech.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list uploads", slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch uploaded files: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := api.UploadedFilesResponse{
		TechnicianID: tech.ID,
		Files:        make([]api.DeviceUpload, 0, len(uploads)),
		Count:        len(uploads),
	}
	for _, u := range uploads {
		resp.Files = append(resp.Files, api.DeviceUpload{
			ID:             u.ID,
			TechnicianID:   u.TechnicianID,
			UploadedBy:     u.UploadedBy,
			FileName:       u.FileName,
			DeviceType:     u.DeviceType,
			RowCount:       u.RowCount,
			DevicesCreated: u.DevicesCreated,
			CreatedAt:      u.CreatedAt,
		})
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

func (h *HostHandler) technicianFromPath(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteDetail(w, h.logger, "Not found.", http.StatusNotFound)
		return nil, false
	}
	return h.technician(w, r, id)
}

// technician загружает учетную запись техника, отвечая 404 для других ролей
func (h *HostHandler) technician(w http.ResponseWriter, r *http.Request, id int64) (*models.User, bool) {
	ctx := r.Context()

	user, err := h.users.GetUserByID(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return nil, false
	}
	if user == nil || user.Role != models.RoleTechnician {
		writeError(w, h.logger, fmt.Sprintf("Technician with ID %d not found", id), http.StatusNotFound)
		return nil, false
	}
	return user, true
}
