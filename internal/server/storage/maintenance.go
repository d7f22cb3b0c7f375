package storage

import (
	"context"
	"time"

	"github.com/iudanet/atmtrack/internal/models"
)

// DeviceFilter фильтр устройств техника
type DeviceFilter struct {
	Type   string // точное совпадение типа, пусто для всех
	Region string // подстрока региона без учета регистра
}

// SubmissionFilter фильтр отчетов супервайзера. Пустые поля не фильтруют.
type SubmissionFilter struct {
	Status       string
	DeviceType   string
	City         string // город устройства
	DateFrom     string // YYYY-MM-DD включительно
	DateTo       string // YYYY-MM-DD включительно
	TechnicianID int64
}

// SubmissionCounts количество отчетов по статусам
type SubmissionCounts struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// TechnicianDeviceCount количество устройств, закрепленных за техником
type TechnicianDeviceCount struct {
	CreatedAt   time.Time
	Username    string
	City        string
	ID          int64
	DeviceCount int
}

// MaintenanceStorage defines interface for devices and submissions persistence
type MaintenanceStorage interface {
	// CreateDevice creates a device and sets device.ID
	// Returns ErrDeviceAlreadyExists if interaction id is taken
	CreateDevice(ctx context.Context, device *models.Device) error

	// AssignDevice links device to technician, repeated calls are no-op
	AssignDevice(ctx context.Context, technicianID, deviceID int64) error

	// ImportDevices creates missing devices, assigns all of them to upload.TechnicianID
	// and records the upload in one transaction. Existing devices are kept as is.
	// Sets upload.ID and upload.DevicesCreated
	ImportDevices(ctx context.Context, upload *models.DeviceUpload, devices []*models.Device) error

	// ListUploads returns uploads for technician newest first
	ListUploads(ctx context.Context, technicianID int64) ([]*models.DeviceUpload, error)

	// UploadedTypes returns distinct device types uploaded for technician
	UploadedTypes(ctx context.Context, technicianID int64) ([]string, error)

	// ListTechnicianDevices returns devices assigned to technician in their city
	ListTechnicianDevices(ctx context.Context, technicianID int64, filter DeviceFilter) ([]*models.Device, error)

	// SubmittedHalves returns half months with submissions of the technician
	// in the month of t, keyed by device ID
	SubmittedHalves(ctx context.Context, technicianID int64, t time.Time) (map[int64][]int, error)

	// CreateSubmission creates a submission and sets submission.ID
	// Returns ErrDuplicateSubmission for a second active submission in the half month
	CreateSubmission(ctx context.Context, submission *models.Submission) error

	// ListSubmissions returns submissions newest first
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, error)

	// GetSubmission returns submission by ID
	// Returns ErrSubmissionNotFound if submission doesn't exist
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)

	// UpdateSubmissionReview sets status and remarks; nil remarks keep the stored value
	// Returns ErrSubmissionNotFound if submission doesn't exist
	UpdateSubmissionReview(ctx context.Context, id int64, status string, remarks *string) error

	// SubmissionStats counts submissions by status
	SubmissionStats(ctx context.Context) (SubmissionCounts, error)

	// CountDevices returns total number of devices
	CountDevices(ctx context.Context) (int, error)

	// TechnicianDeviceCounts returns newest technicians with their device counts
	TechnicianDeviceCounts(ctx context.Context, limit int) ([]TechnicianDeviceCount, error)
}
