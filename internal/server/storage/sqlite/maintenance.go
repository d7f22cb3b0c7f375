package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
)

const deviceColumns = `d.id, d.interaction_id, d.gfm_cost_center, d.region, d.gfm_problem_type,
	d.gfm_problem_date, d.city, d.type, d.created_at`

// CreateDevice creates a device
func (s *Storage) CreateDevice(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (interaction_id, gfm_cost_center, region, gfm_problem_type,
			gfm_problem_date, city, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		device.InteractionID,
		device.GFMCostCenter,
		device.Region,
		device.GFMProblemType,
		device.GFMProblemDate,
		device.City,
		device.Type,
		device.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err, "devices.interaction_id") {
			return storage.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to insert device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get device id: %w", err)
	}
	device.ID = id

	return nil
}

// AssignDevice links device to technician
func (s *Storage) AssignDevice(ctx context.Context, technicianID, deviceID int64) error {
	query := `INSERT OR IGNORE INTO technician_devices (technician_id, device_id) VALUES (?, ?)`

	if _, err := s.db.ExecContext(ctx, query, technicianID, deviceID); err != nil {
		return fmt.Errorf("failed to assign device: %w", err)
	}
	return nil
}

// ListTechnicianDevices returns devices assigned to technician in their city,
// ordered by problem date descending
func (s *Storage) ListTechnicianDevices(ctx context.Context, technicianID int64, filter storage.DeviceFilter) ([]*models.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		JOIN technician_devices td ON td.device_id = d.id
		JOIN users u ON u.id = td.technician_id
		WHERE td.technician_id = ? AND d.city = u.city
	`
	args := []any{technicianID}

	if filter.Type != "" {
		query += ` AND d.type = ?`
		args = append(args, filter.Type)
	}
	if filter.Region != "" {
		query += ` AND lower(d.region) LIKE ?`
		args = append(args, "%"+strings.ToLower(filter.Region)+"%")
	}
	query += ` ORDER BY d.gfm_problem_date DESC, d.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	devices := make([]*models.Device, 0)
	for rows.Next() {
		device := &models.Device{}
		if err := rows.Scan(
			&device.ID,
			&device.InteractionID,
			&device.GFMCostCenter,
			&device.Region,
			&device.GFMProblemType,
			&device.GFMProblemDate,
			&device.City,
			&device.Type,
			&device.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return devices, nil
}

// SubmittedHalves returns half months with submissions in the month of t
func (s *Storage) SubmittedHalves(ctx context.Context, technicianID int64, t time.Time) (map[int64][]int, error) {
	query := `
		SELECT DISTINCT device_id, half_month
		FROM submissions
		WHERE technician_id = ? AND substr(visit_date, 1, 7) = ?
	`

	rows, err := s.db.QueryContext(ctx, query, technicianID, t.Format("2006-01"))
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	halves := make(map[int64][]int)
	for rows.Next() {
		var deviceID int64
		var half int
		if err := rows.Scan(&deviceID, &half); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		halves[deviceID] = append(halves[deviceID], half)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return halves, nil
}

// CreateSubmission creates a submission
func (s *Storage) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (technician_id, device_id, type, visit_date, half_month,
			job_status, status, pdf_url, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		submission.TechnicianID,
		submission.DeviceID,
		submission.Type,
		submission.VisitDate,
		submission.HalfMonth,
		submission.JobStatus,
		submission.Status,
		submission.PDFURL,
		submission.Remarks,
		submission.CreatedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get submission id: %w", err)
	}
	submission.ID = id

	return nil
}

const submissionSelect = `
	SELECT s.id, s.technician_id, s.device_id, s.type, s.visit_date, s.half_month,
		s.job_status, s.status, s.pdf_url, s.remarks, s.created_at,
		u.username, u.city,
		` + deviceColumns + `
	FROM submissions s
	JOIN users u ON u.id = s.technician_id
	JOIN devices d ON d.id = s.device_id
`

// ListSubmissions returns submissions newest first
func (s *Storage) ListSubmissions(ctx context.Context, filter storage.SubmissionFilter) ([]*models.Submission, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "s.status = ?")
		args = append(args, filter.Status)
	}
	if filter.DeviceType != "" {
		where = append(where, "d.type = ?")
		args = append(args, filter.DeviceType)
	}
	if filter.City != "" {
		where = append(where, "d.city = ?")
		args = append(args, filter.City)
	}
	if filter.TechnicianID > 0 {
		where = append(where, "s.technician_id = ?")
		args = append(args, filter.TechnicianID)
	}
	if filter.DateFrom != "" {
		where = append(where, "s.visit_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		where = append(where, "s.visit_date <= ?")
		args = append(args, filter.DateTo)
	}

	query := submissionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return submissions, nil
}

// GetSubmission returns submission by ID
func (s *Storage) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	submission, err := scanSubmission(s.db.QueryRowContext(ctx, submissionSelect+" WHERE s.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

// UpdateSubmissionReview sets status and, when given, remarks
func (s *Storage) UpdateSubmissionReview(ctx context.Context, id int64, status string, remarks *string) error {
	query := `UPDATE submissions SET status = ?, remarks = COALESCE(?, remarks) WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, status, remarks, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to update submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrSubmissionNotFound
	}

	return nil
}

// SubmissionStats counts submissions by status
func (s *Storage) SubmissionStats(ctx context.Context) (storage.SubmissionCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Approved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Rejected' THEN 1 ELSE 0 END), 0)
		FROM submissions
	`

	var counts storage.SubmissionCounts
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Total,
		&counts.Pending,
		&counts.Approved,
		&counts.Rejected,
	); err != nil {
		return storage.SubmissionCounts{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	return counts, nil
}

// CountDevices returns total number of devices
func (s *Storage) CountDevices(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}

// TechnicianDeviceCounts returns newest technicians with their device counts
func (s *Storage) TechnicianDeviceCounts(ctx context.Context, limit int) ([]storage.TechnicianDeviceCount, error) {
	query := `
		SELECT u.id, u.username, u.city, u.created_at, COUNT(td.device_id)
		FROM users u
		LEFT JOIN technician_devices td ON td.technician_id = u.id
		WHERE u.role = ?
		GROUP BY u.id
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, models.RoleTechnician, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make([]storage.TechnicianDeviceCount, 0)
	for rows.Next() {
		var c storage.TechnicianDeviceCount
		if err := rows.Scan(&c.ID, &c.Username, &c.City, &c.CreatedAt, &c.DeviceCount); err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	submission := &models.Submission{}
	var pdfURL, remarks sql.NullString

	if err := row.Scan(
		&submission.ID,
		&submission.TechnicianID,
		&submission.DeviceID,
		&submission.Type,
		&submission.VisitDate,
		&submission.HalfMonth,
		&submission.JobStatus,
		&submission.Status,
		&pdfURL,
		&remarks,
		&submission.CreatedAt,
		&submission.TechnicianName,
		&submission.TechnicianCity,
		&submission.Device.ID,
		&submission.Device.InteractionID,
		&submission.Device.GFMCostCenter,
		&submission.Device.Region,
		&submission.Device.GFMProblemType,
		&submission.Device.GFMProblemDate,
		&submission.Device.City,
		&submission.Device.Type,
		&submission.Device.CreatedAt,
	); err != nil {
		return nil, err
	}

	if pdfURL.Valid {
		submission.PDFURL = &pdfURL.String
	}
	if remarks.Valid {
		submission.Remarks = &remarks.String
	}
	return submission, nil
}
