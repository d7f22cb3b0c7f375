package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/facebookgo/clock"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/pkg/api"
)

// TechnicianHandler обрабатывает запросы техников
type TechnicianHandler struct {
	logger  *slog.Logger
	storage storage.MaintenanceStorage
	clock   clock.Clock
}

// NewTechnicianHandler создает handler техника. clock задает "сегодня" для расчета сроков.
func NewTechnicianHandler(logger *slog.Logger, storage storage.MaintenanceStorage, clk clock.Clock) *TechnicianHandler {
	return &TechnicianHandler{
		logger:  logger,
		storage: storage,
		clock:   clk,
	}
}

// Devices обрабатывает GET /api/technician/devices
// Query: type (тип устройства или All), status (подстрока региона)
func (h *TechnicianHandler) Devices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteDetail(w, h.logger, MsgNotAuthenticated, http.StatusUnauthorized)
		return
	}

	filter := storage.DeviceFilter{Region: strings.TrimSpace(r.URL.Query().Get("status"))}
	if t := r.URL.Query().Get("type"); t != "" && t != "All" {
		filter.Type = t
	}

	devices, err := h.storage.ListTechnicianDevices(ctx, userID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list devices", slog.Int64("user_id", userID), slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch devices: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := h.clock.Now()
	halves, err := h.storage.SubmittedHalves(ctx, userID, now)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load submissions", slog.Int64("user_id", userID), slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch devices: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := api.DeviceListResponse{
		Count:   len(devices),
		Devices: make([]api.Device, 0, len(devices)),
	}
	for _, d := range devices {
		resp.Devices = append(resp.Devices, toAPIDevice(d, halves[d.ID], now))
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// Submit обрабатывает POST /api/technician/submit
// Один активный отчет на устройство за полумесяц, новый отчет всегда Pending.
func (h *TechnicianHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteDetail(w, h.logger, MsgNotAuthenticated, http.StatusUnauthorized)
		return
	}

	var req api.SubmitRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	fields := make(map[string][]string)
	if req.DeviceID <= 0 {
		fields["device_id"] = []string{MsgFieldRequired}
	}
	visit, err := time.Parse(time.DateOnly, req.VisitDate)
	if err != nil {
		fields["visit_date"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
	}
	if req.JobStatus != api.JobOk && req.JobStatus != api.JobNotOk {
		fields["job_status"] = []string{fmt.Sprintf("%q is not a valid choice.", req.JobStatus)}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, h.logger, fields)
		return
	}

	devices, err := h.storage.ListTechnicianDevices(ctx, userID, storage.DeviceFilter{})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list devices", slog.Any("error", err))
		writeError(w, h.logger, "Failed to create submission: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var device *models.Device
	for _, d := range devices {
		if d.ID == req.DeviceID {
			device = d
			break
		}
	}
	if device == nil {
		writeFieldErrors(w, h.logger, map[string][]string{"device_id": {"Device not found or not assigned to you"}})
		return
	}

	submission := &models.Submission{
		TechnicianID: userID,
		DeviceID:     device.ID,
		Type:         device.Type,
		VisitDate:    visit.Format(time.DateOnly),
		HalfMonth:    models.HalfMonth(visit),
		JobStatus:    req.JobStatus,
		Status:       models.SubmissionPending,
		CreatedAt:    h.clock.Now(),
	}
	if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
		submission.Remarks = &remarks
	}

	if err := h.storage.CreateSubmission(ctx, submission); err != nil {
		if errors.Is(err, storage.ErrDuplicateSubmission) {
			msg := fmt.Sprintf("You have already submitted for this device in half %d of %s",
				submission.HalfMonth, visit.Format("January 2006"))
			WriteJSON(w, h.logger, api.ErrorResponse{NonFieldErrors: []string{msg}}, http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create submission", slog.Any("error", err))
		writeError(w, h.logger, "Failed to create submission: "+err.Error(), http.StatusInternalServerError)
		return
	}

	created, err := h.storage.GetSubmission(ctx, submission.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load submission", slog.Any("error", err))
		writeError(w, h.logger, "Failed to create submission: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "submission created",
		slog.Int64("submission_id", created.ID),
		slog.Int64("device_id", created.DeviceID),
		slog.Int("half_month", created.HalfMonth))

	WriteJSON(w, h.logger, api.SubmitResponse{
		Message:    "Maintenance submission created successfully",
		Submission: toAPISubmission(created),
	}, http.StatusCreated)
}
