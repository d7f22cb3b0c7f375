package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/atmtrack/internal/models"
)

// ImportDevices creates missing devices, assigns them to technician and records the upload
func (s *Storage) ImportDevices(ctx context.Context, upload *models.DeviceUpload, devices []*models.Device) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := 0
	for _, device := range devices {
		isNew, err := upsertDevice(ctx, tx, device)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO technician_devices (technician_id, device_id) VALUES (?, ?)`,
			upload.TechnicianID, device.ID,
		); err != nil {
			return fmt.Errorf("failed to assign device: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO device_uploads (technician_id, uploaded_by, file_name, device_type,
			row_count, devices_created, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		upload.TechnicianID,
		upload.UploadedBy,
		upload.FileName,
		upload.DeviceType,
		upload.RowCount,
		created,
		upload.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get upload id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	upload.ID = id
	upload.DevicesCreated = created
	return nil
}

// upsertDevice находит устройство по interaction id или создает его.
// Существующее устройство не меняется, device заполняется сохраненными значениями.
func upsertDevice(ctx context.Context, tx *sql.Tx, device *models.Device) (bool, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices d WHERE d.interaction_id = ?`, device.InteractionID)
	err := row.Scan(
		&device.ID,
		&device.InteractionID,
		&device.GFMCostCenter,
		&device.Region,
		&device.GFMProblemType,
		&device.GFMProblemDate,
		&device.City,
		&device.Type,
		&device.CreatedAt,
	)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to get device: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO devices (interaction_id, gfm_cost_center, region, gfm_problem_type,
			gfm_problem_date, city, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
		return false, fmt.Errorf("failed to insert device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get device id: %w", err)
	}
	device.ID = id

	return true, nil
}

// ListUploads returns uploads for technician newest first
func (s *Storage) ListUploads(ctx context.Context, technicianID int64) ([]*models.DeviceUpload, error) {
	query := `
		SELECT id, technician_id, uploaded_by, file_name, device_type,
			row_count, devices_created, created_at
		FROM device_uploads
		WHERE technician_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, technicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	uploads := make([]*models.DeviceUpload, 0)
	for rows.Next() {
		upload := &models.DeviceUpload{}
		var uploadedBy sql.NullInt64
		if err := rows.Scan(
			&upload.ID,
			&upload.TechnicianID,
			&uploadedBy,
			&upload.FileName,
			&upload.DeviceType,
			&upload.RowCount,
			&upload.DevicesCreated,
			&upload.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		if uploadedBy.Valid {
			upload.UploadedBy = &uploadedBy.Int64
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return uploads, nil
}

// UploadedTypes returns distinct device types uploaded for technician
func (s *Storage) UploadedTypes(ctx context.Context, technicianID int64) ([]string, error) {
	query := `SELECT DISTINCT device_type FROM device_uploads WHERE technician_id = ? ORDER BY device_type`

	rows, err := s.db.QueryContext(ctx, query, technicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload types: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan upload type: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return types, nil
}
