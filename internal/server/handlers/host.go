package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
	"github.com/iudanet/atmtrack/internal/validation"
	"github.com/iudanet/atmtrack/pkg/api"
)

// hostStatsLimit количество последних техников в статистике
const hostStatsLimit = 10

// HostHandler обрабатывает запросы администратора данных
type HostHandler struct {
	logger      *slog.Logger
	users       storage.UserStorage
	maintenance storage.MaintenanceStorage
	bcryptCost  int
}

// NewHostHandler создает handler администратора данных
func NewHostHandler(logger *slog.Logger, users storage.UserStorage, maintenance storage.MaintenanceStorage, bcryptCost int) *HostHandler {
	return &HostHandler{
		logger:      logger,
		users:       users,
		maintenance: maintenance,
		bcryptCost:  bcryptCost,
	}
}

// Technicians обрабатывает GET /api/host/technicians/
// Новые учетные записи первыми
func (h *HostHandler) Technicians(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.ListUsersByRole(ctx, models.RoleTechnician)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list technicians", slog.Any("error", err))
		writeError(w, h.logger, "Failed to fetch technicians: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]api.Technician, 0, len(users))
	for _, u := range users {
		resp = append(resp, toAPITechnician(u))
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// CreateTechnician обрабатывает POST /api/host/technicians/
// Ошибки валидации возвращаются по полям: {"username": ["..."]}
func (h *HostHandler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateTechnicianRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if fields := validation.ValidateTechnician(req.Username, req.Password, req.City); len(fields) > 0 {
		h.logger.WarnContext(ctx, "invalid technician", slog.String("username", req.Username))
		writeFieldErrors(w, h.logger, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         models.RoleTechnician,
		City:         strings.TrimSpace(req.City),
		CreatedAt:    time.Now(),
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			writeFieldErrors(w, h.logger, map[string][]string{"username": {"Username already exists"}})
			return
		}
		h.logger.ErrorContext(ctx, "failed to create technician", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "technician created",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID),
		slog.String("city", user.City))

	WriteJSON(w, h.logger, toAPITechnician(user), http.StatusCreated)
}

// DeleteTechnician обрабатывает DELETE /api/host/technicians/{id}/
// Вместе с техником удаляются его токены, назначения и отчеты
func (h *HostHandler) DeleteTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteDetail(w, h.logger, "Not found.", http.StatusNotFound)
		return
	}

	user, err := h.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			WriteDetail(w, h.logger, "Not found.", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}
	if user.Role != models.RoleTechnician {
		WriteDetail(w, h.logger, "Only technician accounts can be deleted", http.StatusBadRequest)
		return
	}

	if err := h.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			WriteDetail(w, h.logger, "Not found.", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete technician", slog.Any("error", err))
		WriteDetail(w, h.logger, MsgInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "technician deleted", slog.Int64("user_id", id), slog.String("username", user.Username))

	w.WriteHeader(http.StatusNoContent)
}

// Stats обрабатывает GET /api/host/dashboard-stats
// Доступно администратору данных и супервайзеру
func (h *HostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	technicians, err := h.users.ListUsersByRole(ctx, models.RoleTechnician)
	if err != nil {
		h.statsFailed(w, r, err)
		return
	}
	devices, err := h.maintenance.CountDevices(ctx)
	if err != nil {
		h.statsFailed(w, r, err)
		return
	}
	counts, err := h.maintenance.TechnicianDeviceCounts(ctx, hostStatsLimit)
	if err != nil {
		h.statsFailed(w, r, err)
		return
	}

	resp := api.HostStats{
		TotalTechnicians:       len(technicians),
		TotalDevices:           devices,
		TechniciansWithDevices: make([]api.TechnicianDevices, 0, len(counts)),
	}
	for _, c := range counts {
		resp.TechniciansWithDevices = append(resp.TechniciansWithDevices, api.TechnicianDevices{
			ID:          c.ID,
			Username:    c.Username,
			City:        c.City,
			DeviceCount: c.DeviceCount,
		})
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

func (h *HostHandler) statsFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "failed to build dashboard stats", slog.Any("error", err))
	writeError(w, h.logger, "Failed to fetch dashboard stats: "+err.Error(), http.StatusInternalServerError)
}

func toAPITechnician(u *models.User) api.Technician {
	return api.Technician{
		ID:        u.ID,
		Username:  u.Username,
		Role:      api.Role(u.Role),
		City:      u.City,
		CreatedAt: u.CreatedAt,
	}
}
