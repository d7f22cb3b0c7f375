package maintenance

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/atmtrack/pkg/api"
)

// Фильтр "все значения" в интерфейсе
const FilterAll = "All"

var (
	// ErrRemarksRequired отклонение отчета без причины
	ErrRemarksRequired = errors.New("remarks are required for rejection")

	// ErrRemarksTooShort причина отклонения короче MinRejectRemarksLen
	ErrRemarksTooShort = fmt.Errorf("remarks must be at least %d characters long", api.MinRejectRemarksLen)

	// ErrInvalidID идентификатор должен быть положительным
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidVisitDate дата визита не в формате YYYY-MM-DD
	ErrInvalidVisitDate = errors.New("visit date must be in YYYY-MM-DD format")

	// ErrInvalidJobStatus статус работы не Ok и не Not Ok
	ErrInvalidJobStatus = fmt.Errorf("job status must be %q or %q", api.JobOk, api.JobNotOk)

	// ErrNoRows импорт без строк
	ErrNoRows = errors.New("device list contains no data rows")
)

// Requester выполняет аутентифицированные запросы. Реализуется *gateway.Gateway.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, result any) error
	Post(ctx context.Context, path string, body, result any) error
	Patch(ctx context.Context, path string, body, result any) error
	Delete(ctx context.Context, path string) error
}

// DeviceFilter фильтр списка устройств техника
type DeviceFilter struct {
	Type   string // Cleaning, Electrical или All
	Region string // подстрока региона
}

// SubmissionFilter фильтр списка отчетов супервайзера
type SubmissionFilter struct {
	Status       string // Pending, Approved, Rejected или All
	DeviceType   string
	City         string
	DateFrom     string // YYYY-MM-DD
	DateTo       string // YYYY-MM-DD
	TechnicianID int64
}

// Service определяет операции обслуживания банкоматов для всех ролей
type Service interface {
	// Technician
	Devices(ctx context.Context, filter DeviceFilter) (*api.DeviceListResponse, error)
	Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error)

	// Supervisor
	Submissions(ctx context.Context, filter SubmissionFilter) (*api.SubmissionListResponse, error)
	Submission(ctx context.Context, id int64) (*api.Submission, error)
	Approve(ctx context.Context, id int64, remarks string) (*api.ReviewResponse, error)
	Reject(ctx context.Context, id int64, remarks string) (*api.ReviewResponse, error)
	SupervisorStats(ctx context.Context) (*api.SupervisorStats, error)

	// Host
	Technicians(ctx context.Context) ([]api.Technician, error)
	CreateTechnician(ctx context.Context, req api.CreateTechnicianRequest) (*api.Technician, error)
	DeleteTechnician(ctx context.Context, id int64) error
	HostStats(ctx context.Context) (*api.HostStats, error)
	ImportDevices(ctx context.Context, req api.DeviceImportRequest) (*api.DeviceImportResponse, error)
	UploadedTypes(ctx context.Context, technicianID int64) (*api.UploadedTypesResponse, error)
	UploadedFiles(ctx context.Context, technicianID int64) (*api.UploadedFilesResponse, error)
}

// service выполняет запросы к серверу через шлюз
type service struct {
	requester Requester
}

// NewService создает сервис обслуживания
func NewService(requester Requester) Service {
	return &service{requester: requester}
}

// Devices возвращает устройства, закрепленные за техником
func (s *service) Devices(ctx context.Context, filter DeviceFilter) (*api.DeviceListResponse, error) {
	query := url.Values{}
	setFilter(query, "type", filter.Type)
	if filter.Region != "" {
		query.Set("status", filter.Region)
	}

	var resp api.DeviceListResponse
	if err := s.requester.Get(ctx, "/technician/devices", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit отправляет отчет о визите на устройство
func (s *service) Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error) {
	if req.DeviceID <= 0 {
		return nil, ErrInvalidID
	}
	if _, err := time.Parse(time.DateOnly, req.VisitDate); err != nil {
		return nil, ErrInvalidVisitDate
	}
	if req.JobStatus != api.JobOk && req.JobStatus != api.JobNotOk {
		return nil, ErrInvalidJobStatus
	}
	req.Remarks = strings.TrimSpace(req.Remarks)

	var resp api.SubmitResponse
	if err := s.requester.Post(ctx, "/technician/submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submissions возвращает отчеты для проверки
func (s *service) Submissions(ctx context.Context, filter SubmissionFilter) (*api.SubmissionListResponse, error) {
	query := url.Values{}
	setFilter(query, "status", filter.Status)
	setFilter(query, "device_type", filter.DeviceType)
	setFilter(query, "city", filter.City)
	if filter.TechnicianID > 0 {
		query.Set("technician_id", strconv.FormatInt(filter.TechnicianID, 10))
	}
	if filter.DateFrom != "" {
		query.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query.Set("date_to", filter.DateTo)
	}

	var resp api.SubmissionListResponse
	if err := s.requester.Get(ctx, "/supervisor/submissions", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submission возвращает отчет по идентификатору
func (s *service) Submission(ctx context.Context, id int64) (*api.Submission, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var resp api.SubmissionDetailResponse
	if err := s.requester.Get(ctx, fmt.Sprintf("/supervisor/submissions/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Submission, nil
}

// Approve утверждает отчет. Замечания необязательны.
func (s *service) Approve(ctx context.Context, id int64, remarks string) (*api.ReviewResponse, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.review(ctx, id, "approve", remarks)
}

// Reject отклоняет отчет. Причина обязательна.
func (s *service) Reject(ctx context.Context, id int64, remarks string) (*api.ReviewResponse, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	trimmed := strings.TrimSpace(remarks)
	if trimmed == "" {
		return nil, ErrRemarksRequired
	}
	if len([]rune(trimmed)) < api.MinRejectRemarksLen {
		return nil, ErrRemarksTooShort
	}
	return s.review(ctx, id, "reject", remarks)
}

func (s *service) review(ctx context.Context, id int64, action, remarks string) (*api.ReviewResponse, error) {
	var resp api.ReviewResponse
	path := fmt.Sprintf("/supervisor/submissions/%d/%s", id, action)
	if err := s.requester.Patch(ctx, path, api.ReviewRequest{Remarks: remarks}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SupervisorStats возвращает счетчики отчетов по статусам
func (s *service) SupervisorStats(ctx context.Context) (*api.SupervisorStats, error) {
	var resp api.SupervisorStats
	if err := s.requester.Get(ctx, "/supervisor/dashboard-stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Technicians возвращает учетные записи техников
func (s *service) Technicians(ctx context.Context) ([]api.Technician, error) {
	var resp []api.Technician
	if err := s.requester.Get(ctx, "/host/technicians/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateTechnician создает учетную запись техника
func (s *service) CreateTechnician(ctx context.Context, req api.CreateTechnicianRequest) (*api.Technician, error) {
	var resp api.Technician
	if err := s.requester.Post(ctx, "/host/technicians/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTechnician удаляет техника вместе с его данными
func (s *service) DeleteTechnician(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.requester.Delete(ctx, fmt.Sprintf("/host/technicians/%d/", id))
}

// HostStats возвращает статистику для администратора данных
func (s *service) HostStats(ctx context.Context) (*api.HostStats, error) {
	var resp api.HostStats
	if err := s.requester.Get(ctx, "/host/dashboard-stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportDevices загружает строки списка устройств для техника
func (s *service) ImportDevices(ctx context.Context, req api.DeviceImportRequest) (*api.DeviceImportResponse, error) {
	if req.TechnicianID <= 0 {
		return nil, ErrInvalidID
	}
	if len(req.Rows) == 0 {
		return nil, ErrNoRows
	}

	var resp api.DeviceImportResponse
	if err := s.requester.Post(ctx, "/host/upload-excel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadedTypes возвращает типы устройств, загруженных для техника
func (s *service) UploadedTypes(ctx context.Context, technicianID int64) (*api.UploadedTypesResponse, error) {
	if technicianID <= 0 {
		return nil, ErrInvalidID
	}

	var resp api.UploadedTypesResponse
	path := fmt.Sprintf("/host/technicians/%d/uploaded-types", technicianID)
	if err := s.requester.Get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadedFiles возвращает журнал импортов для техника
func (s *service) UploadedFiles(ctx context.Context, technicianID int64) (*api.UploadedFilesResponse, error) {
	if technicianID <= 0 {
		return nil, ErrInvalidID
	}

	var resp api.UploadedFilesResponse
	path := fmt.Sprintf("/host/technicians/%d/uploaded-files", technicianID)
	if err := s.requester.Get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// setFilter добавляет параметр, если он задан и не равен "All"
func setFilter(query url.Values, key, value string) {
	if value != "" && !strings.EqualFold(value, FilterAll) {
		query.Set(key, value)
	}
}
