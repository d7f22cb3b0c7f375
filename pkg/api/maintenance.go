package api

import "time"

// Статусы отчетов о визитах
const (
	SubmissionPending  = "Pending"
	SubmissionApproved = "Approved"
	SubmissionRejected = "Rejected"
)

// Статус устройства относительно текущего полумесяца
const (
	DeviceSubmitted = "submitted"
	DevicePending   = "pending"
)

// Типы устройств
const (
	TypeCleaning1  = "Cleaning1"
	TypeCleaning2  = "Cleaning2"
	TypeElectrical = "Electrical"
	TypeSecurity   = "Security"
	TypeStandAlone = "Stand Alone"
)

// DeviceTypes все допустимые типы устройств
var DeviceTypes = []string{TypeCleaning1, TypeCleaning2, TypeElectrical, TypeSecurity, TypeStandAlone}

// Device представляет банкомат, закрепленный за техником
type Device struct {
	InteractionID    string    `json:"interaction_id"`
	GFMCostCenter    string    `json:"gfm_cost_center"`
	Region           string    `json:"region"`
	GFMProblemType   string    `json:"gfm_problem_type"`
	GFMProblemDate   string    `json:"gfm_problem_date"`
	City             string    `json:"city"`
	Type             string    `json:"type"`
	SubmissionStatus string    `json:"submission_status"`
	NextDueDate      *DueDate  `json:"next_due_date"`
	CreatedAt        time.Time `json:"created_at"`
	ID               int64     `json:"id"`
}

// DueDate срок следующего визита. Для уборки задается полумесяц (1 или 2),
// для электрики и охраны месяц.
type DueDate struct {
	Date        string `json:"date"`
	Month       string `json:"month,omitempty"`
	Description string `json:"description"`
	HalfMonth   int    `json:"half_month,omitempty"`
}

// DeviceListResponse представляет ответ GET /technician/devices
type DeviceListResponse struct {
	Devices []Device `json:"devices"`
	Count   int      `json:"count"`
}

// DeviceInfo краткая информация об устройстве внутри отчета
type DeviceInfo struct {
	InteractionID string `json:"interaction_id"`
	GFMCostCenter string `json:"gfm_cost_center"`
	City          string `json:"city"`
	Region        string `json:"region"`
	Type          string `json:"type"`
}

// Submission представляет отчет техника о визите
type Submission struct {
	CreatedAt      time.Time  `json:"created_at"`
	PDFURL         *string    `json:"pdf_url"`
	Remarks        *string    `json:"remarks"`
	TechnicianName string     `json:"technician_name"`
	TechnicianCity string     `json:"technician_city"`
	Type           string     `json:"type"`
	VisitDate      string     `json:"visit_date"`
	Status         string     `json:"status"`
	DeviceInfo     DeviceInfo `json:"device_info"`
	ID             int64      `json:"id"`
	Technician     int64      `json:"technician"`
	Device         int64      `json:"device"`
	HalfMonth      int        `json:"half_month"`
}

// SubmissionListResponse представляет ответ GET /supervisor/submissions
type SubmissionListResponse struct {
	Status      string       `json:"status"`
	Submissions []Submission `json:"submissions"`
	Count       int          `json:"count"`
}

// Значения job_status
const (
	JobOk    = "Ok"
	JobNotOk = "Not Ok"
)

// SubmitRequest тело запроса POST /technician/submit
type SubmitRequest struct {
	VisitDate string `json:"visit_date"` // YYYY-MM-DD
	JobStatus string `json:"job_status"`
	Remarks   string `json:"remarks,omitempty"`
	DeviceID  int64  `json:"device_id"`
}

// SubmitResponse ответ на создание отчета
type SubmitResponse struct {
	Message    string     `json:"message"`
	Submission Submission `json:"submission"`
}

// ReviewRequest тело запроса на утверждение или отклонение отчета
type ReviewRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// SubmissionDetailResponse представляет ответ GET /supervisor/submissions/{id}
type SubmissionDetailResponse struct {
	Status     string     `json:"status"`
	Submission Submission `json:"submission"`
}

// ReviewResponse ответ на утверждение или отклонение отчета
type ReviewResponse struct {
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Submission Submission `json:"submission"`
}

// MessageResponse ответ, содержащий только сообщение
type MessageResponse struct {
	Message string `json:"message"`
}

// MinRejectRemarksLen минимальная длина причины отклонения отчета
const MinRejectRemarksLen = 10

// SupervisorStats представляет ответ GET /supervisor/dashboard-stats
type SupervisorStats struct {
	TotalSubmissions    int `json:"total_submissions"`
	PendingSubmissions  int `json:"pending_submissions"`
	ApprovedSubmissions int `json:"approved_submissions"`
	RejectedSubmissions int `json:"rejected_submissions"`
}

// TechnicianDevices количество устройств, закрепленных за техником
type TechnicianDevices struct {
	Username    string `json:"username"`
	City        string `json:"city"`
	ID          int64  `json:"id"`
	DeviceCount int    `json:"device_count"`
}

// HostStats представляет ответ GET /host/dashboard-stats
type HostStats struct {
	TechniciansWithDevices []TechnicianDevices `json:"technicians_with_devices"`
	TotalTechnicians       int                 `json:"total_technicians"`
	TotalDevices           int                 `json:"total_devices"`
}

// CreateTechnicianRequest тело запроса POST /host/technicians/
type CreateTechnicianRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	City     string `json:"city"`
}

// Technician представляет учетную запись техника
type Technician struct {
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	City      string    `json:"city"`
	Role      Role      `json:"role"`
	ID        int64     `json:"id"`
}

// MaxImportPreviewRows количество строк импорта, возвращаемых для предпросмотра
const MaxImportPreviewRows = 10

// DeviceRow строка списка устройств, прочитанная из таблицы
type DeviceRow struct {
	InteractionID  string `json:"interaction_id"`
	GFMCostCenter  string `json:"gfm_cost_center"`
	GFMProblemType string `json:"gfm_problem_type"`
	GFMProblemDate string `json:"gfm_problem_date"`
	City           string `json:"city"`
	Region         string `json:"region,omitempty"`
}

// DeviceImportRequest тело запроса POST /host/upload-excel.
// Таблица разбирается на клиенте, на сервер уходят строки.
type DeviceImportRequest struct {
	FileName     string      `json:"file_name"`
	DeviceType   string      `json:"device_type,omitempty"` // по умолчанию Cleaning1
	Rows         []DeviceRow `json:"rows"`
	TechnicianID int64       `json:"technician_id"`
}

// UploadTechnician техник, для которого выполнен импорт
type UploadTechnician struct {
	Username string `json:"username"`
	City     string `json:"city"`
	ID       int64  `json:"id"`
}

// DeviceImportResponse ответ на импорт списка устройств
type DeviceImportResponse struct {
	Status         string           `json:"status"`
	Message        string           `json:"message"`
	FileName       string           `json:"file_name"`
	Data           []DeviceRow      `json:"data"` // первые MaxImportPreviewRows строк
	Technician     UploadTechnician `json:"technician"`
	UploadID       int64            `json:"upload_id"`
	TotalRows      int              `json:"total_rows"`
	DevicesCreated int              `json:"devices_created"`
}

// DeviceUpload запись журнала импорта
type DeviceUpload struct {
	CreatedAt      time.Time `json:"created_at"`
	UploadedBy     *int64    `json:"uploaded_by"`
	FileName       string    `json:"file_name"`
	DeviceType     string    `json:"device_type"`
	ID             int64     `json:"id"`
	TechnicianID   int64     `json:"technician_id"`
	RowCount       int       `json:"row_count"`
	DevicesCreated int       `json:"devices_created"`
}

// UploadedTypesResponse представляет ответ GET /host/technicians/{id}/uploaded-types
type UploadedTypesResponse struct {
	Types        []string `json:"types"`
	TechnicianID int64    `json:"technician_id"`
}

// UploadedFilesResponse представляет ответ GET /host/technicians/{id}/uploaded-files
type UploadedFilesResponse struct {
	Files        []DeviceUpload `json:"files"`
	TechnicianID int64          `json:"technician_id"`
	Count        int            `json:"count"`
}
