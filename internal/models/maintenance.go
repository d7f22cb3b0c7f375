package models

import "time"

// Статусы отчетов
const (
	SubmissionPending  = "Pending"
	SubmissionApproved = "Approved"
	SubmissionRejected = "Rejected"
)

// Device банкомат, импортированный администратором данных
type Device struct {
	CreatedAt      time.Time `json:"created_at"`
	InteractionID  string    `json:"interaction_id"` // уникальный идентификатор устройства
	GFMCostCenter  string    `json:"gfm_cost_center"`
	Region         string    `json:"region"`
	GFMProblemType string    `json:"gfm_problem_type"`
	GFMProblemDate string    `json:"gfm_problem_date"`
	City           string    `json:"city"`
	Type           string    `json:"type"` // Cleaning1, Cleaning2, Electrical, Security, Stand Alone
	ID             int64     `json:"id"`
}

// Submission отчет техника о визите на устройство
type Submission struct {
	CreatedAt time.Time `json:"created_at"`
	PDFURL    *string   `json:"pdf_url"`
	Remarks   *string   `json:"remarks"`
	Type      string    `json:"type"`
	VisitDate string    `json:"visit_date"` // YYYY-MM-DD
	JobStatus string    `json:"job_status"` // Ok или Not Ok
	Status    string    `json:"status"`     // Pending, Approved или Rejected

	// Денормализованные поля для ответов API
	TechnicianName string `json:"technician_name"`
	TechnicianCity string `json:"technician_city"`
	Device         Device `json:"device"`

	ID           int64 `json:"id"`
	TechnicianID int64 `json:"technician_id"`
	DeviceID     int64 `json:"device_id"`
	HalfMonth    int   `json:"half_month"` // 1 (дни 1-15) или 2
}

// HalfMonth возвращает номер полумесяца для даты
func HalfMonth(t time.Time) int {
	if t.Day() <= 15 {
		return 1
	}
	return 2
}

// DeviceUpload запись об импорте списка устройств для техника
type DeviceUpload struct {
	CreatedAt      time.Time `json:"created_at"`
	UploadedBy     *int64    `json:"uploaded_by"` // nil, если администратор удален
	FileName       string    `json:"file_name"`
	DeviceType     string    `json:"device_type"`
	ID             int64     `json:"id"`
	TechnicianID   int64     `json:"technician_id"`
	RowCount       int       `json:"row_count"`
	DevicesCreated int       `json:"devices_created"`
}
