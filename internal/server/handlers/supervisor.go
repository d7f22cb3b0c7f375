package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/pkg/api"
)

const statusSuccess = "success"

// SupervisorHandler обрабатывает проверку отчетов супервайзером
type SupervisorHandler struct {
	logger  *slog.Logger
	storage storage.MaintenanceStorage
}

// NewSupervisorHandler создает handler супервайзера
func NewSupervisorHandler(logger *slog.Logger, storage storage.MaintenanceStorage) *SupervisorHandler {
	return &SupervisorHandler{
		logger:  logger,
		storage: storage,
	}
}

// reviewRequest тело approve/reject. nil Remarks означает, что поле не передано.
type reviewRequest struct {
	Remarks *string `json:"remarks"`
}

// Submissions обрабатывает GET /api/supervisor/submissions
// Query: status, device_type, city (All не фильтрует), technician_id, date_from, date_to
func (h *SupervisorHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := storage.SubmissionFilter{
		Status:     allToEmpty(q.Get("status")),
		DeviceType: allToEmpty(q.Get("device_type")),
		City:       allToEmpty(q.Get("city")),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}
	if raw := q.Get("technician_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.logger, "technician_id must be a number", http.StatusBadRequest)
			return
		}
		filter.TechnicianID = id
	}

	submissions, err := h.storage.ListSubmissions(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list submissions", slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch submissions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := api.SubmissionListResponse{
		Status:      statusSuccess,
		Count:       len(submissions),
		Submissions: make([]api.Submission, 0, len(submissions)),
	}
	for _, s := range submissions {
		resp.Submissions = append(resp.Submissions, toAPISubmission(s))
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// Submission обрабатывает GET /api/supervisor/submissions/{id}
func (h *SupervisorHandler) Submission(w http.ResponseWriter, r *http.Request) {
	submission, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}

	WriteJSON(w, h.logger, api.SubmissionDetailResponse{
		Status:     statusSuccess,
		Submission: toAPISubmission(submission),
	}, http.StatusOK)
}

// Approve обрабатывает PATCH /api/supervisor/submissions/{id}/approve
// Замечания необязательны, переданное значение заменяет сохраненное.
func (h *SupervisorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reviewRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	submission, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	if submission.Status == models.SubmissionApproved {
		writeError(w, h.logger, "Submission is already approved", http.StatusBadRequest)
		return
	}

	if !h.updateReview(w, r, submission.ID, models.SubmissionApproved, req.Remarks) {
		return
	}

	h.logger.InfoContext(ctx, "submission approved", slog.Int64("submission_id", submission.ID))
	h.writeReviewed(w, r, submission.ID, "Submission approved successfully")
}

// Reject обрабатывает PATCH /api/supervisor/submissions/{id}/reject
// Причина обязательна, не короче api.MinRejectRemarksLen символов.
func (h *SupervisorHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reviewRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	submission, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	if submission.Status == models.SubmissionRejected {
		writeError(w, h.logger, "Submission is already rejected", http.StatusBadRequest)
		return
	}
	if req.Remarks == nil || *req.Remarks == "" {
		writeError(w, h.logger, "Remarks are required for rejection", http.StatusBadRequest)
		return
	}
	if len([]rune(strings.TrimSpace(*req.Remarks))) < api.MinRejectRemarksLen {
		writeError(w, h.logger, "Remarks must be at least 10 characters long", http.StatusBadRequest)
		return
	}

	if !h.updateReview(w, r, submission.ID, models.SubmissionRejected, req.Remarks) {
		return
	}

	h.logger.InfoContext(ctx, "submission rejected", slog.Int64("submission_id", submission.ID))
	h.writeReviewed(w, r, submission.ID, "Submission rejected")
}

// Stats обрабатывает GET /api/supervisor/dashboard-stats
func (h *SupervisorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.storage.SubmissionStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count submissions", slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch dashboard statistics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	WriteJSON(w, h.logger, api.SupervisorStats{
		TotalSubmissions:    counts.Total,
		PendingSubmissions:  counts.Pending,
		ApprovedSubmissions: counts.Approved,
		RejectedSubmissions: counts.Rejected,
	}, http.StatusOK)
}

func (h *SupervisorHandler) loadSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, h.logger, "Submission not found", http.StatusNotFound)
		return nil, false
	}

	submission, err := h.storage.GetSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSubmissionNotFound) {
			writeError(w, h.logger, "Submission not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get submission", slog.Int64("submission_id", id), slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch submission: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}

	return submission, true
}

func (h *SupervisorHandler) updateReview(w http.ResponseWriter, r *http.Request, id int64, status string, remarks *string) bool {
	err := h.storage.UpdateSubmissionReview(r.Context(), id, status, remarks)
	switch {
	case err == nil:
		return true
	case errors.Is(err, storage.ErrSubmissionNotFound):
		writeError(w, h.logger, "Submission not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrDuplicateSubmission):
		// повторная отправка за тот же полумесяц уже активна
		writeError(w, h.logger, "Another active submission exists for this device in the same half month", http.StatusBadRequest)
	default:
		h.logger.ErrorContext(r.Context(), "failed to update submission", slog.Int64("submission_id", id), slog.Any("error", err))
		writeError(w, h.logger, "Failed to update submission: "+err.Error(), http.StatusInternalServerError)
	}
	return false
}

func (h *SupervisorHandler) writeReviewed(w http.ResponseWriter, r *http.Request, id int64, message string) {
	submission, err := h.storage.GetSubmission(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reload submission", slog.Int64("submission_id", id), slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch submission: "+err.Error(), http.StatusInternalServerError)
		return
	}

	WriteJSON(w, h.logger, api.ReviewResponse{
		Status:     statusSuccess,
		Message:    message,
		Submission: toAPISubmission(submission),
	}, http.StatusOK)
}

// allToEmpty превращает значение All в отсутствие фильтра
func allToEmpty(v string) string {
	if strings.EqualFold(v, "All") {
		return ""
	}
	return v
}
