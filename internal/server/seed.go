package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/storage"
)

// DemoPassword пароль всех демо-пользователей
const DemoPassword = "atm-demo-2026"

type seedUser struct {
	username string
	role     string
	city     string
}

var demoUsers = []seedUser{
	{username: "admin", role: models.RoleHost},
	{username: "supervisor", role: models.RoleSupervisor},
	{username: "tech_riyadh", role: models.RoleTechnician, city: "Riyadh"},
	{username: "tech_jeddah", role: models.RoleTechnician, city: "Jeddah"},
}

type seedDevice struct {
	interactionID string
	technician    string
	deviceType    string
	city          string
	region        string
	problemType   string
	problemDate   string
}

var demoDevices = []seedDevice{
	{"IM-100201", "tech_riyadh", "Cleaning1", "Riyadh", "Central", "Dirty screen", "2026-01-12"},
	{"IM-100202", "tech_riyadh", "Cleaning2", "Riyadh", "Central", "Card reader dust", "2026-01-20"},
	{"IM-100203", "tech_riyadh", "Electrical", "Riyadh", "North", "Power fluctuation", "2026-02-03"},
	{"IM-100204", "tech_riyadh", "Security", "Riyadh", "North", "Camera offline", "2026-02-14"},
	{"IM-100205", "tech_riyadh", "Stand Alone", "Riyadh", "East", "Kiosk damage", "2026-02-18"},
	{"IM-200301", "tech_jeddah", "Cleaning1", "Jeddah", "Western", "Dirty screen", "2026-01-08"},
	{"IM-200302", "tech_jeddah", "Electrical", "Jeddah", "Western", "UPS alarm", "2026-02-09"},
}

// Seed создает демо-пользователей, устройства и пару отчетов.
// Повторный запуск не создает дубликаты.
func Seed(ctx context.Context, store Store, bcryptCost int, logger *slog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	users := make(map[string]*models.User, len(demoUsers))
	for _, u := range demoUsers {
		user := &models.User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			City:         u.city,
			CreatedAt:    time.Now(),
		}
		err := store.CreateUser(ctx, user)
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			user, err = store.GetUserByUsername(ctx, u.username)
		}
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", u.username, err)
		}
		users[u.username] = user
	}

	created := 0
	devices := make(map[string]*models.Device, len(demoDevices))
	for _, d := range demoDevices {
		device := &models.Device{
			InteractionID:  d.interactionID,
			GFMCostCenter:  "CC-" + d.interactionID[3:],
			Region:         d.region,
			GFMProblemType: d.problemType,
			GFMProblemDate: d.problemDate,
			City:           d.city,
			Type:           d.deviceType,
			CreatedAt:      time.Now(),
		}
		err := store.CreateDevice(ctx, device)
		if errors.Is(err, storage.ErrDeviceAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed: device %s: %w", d.interactionID, err)
		}
		created++
		devices[d.interactionID] = device

		if err := store.AssignDevice(ctx, users[d.technician].ID, device.ID); err != nil {
			return fmt.Errorf("seed: assign %s: %w", d.interactionID, err)
		}
	}

	// Отчеты только при первом запуске
	if created == len(demoDevices) {
		if err := seedSubmissions(ctx, store, users["tech_riyadh"], devices); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "demo data seeded",
		slog.Int("users", len(users)),
		slog.Int("devices_created", created))

	return nil
}

func seedSubmissions(ctx context.Context, store Store, tech *models.User, devices map[string]*models.Device) error {
	today := time.Now()
	lastMonth := today.AddDate(0, -1, 0)

	entries := []struct {
		device string
		visit  time.Time
		status string
	}{
		{device: "IM-100201", visit: lastMonth, status: models.SubmissionApproved},
		{device: "IM-100203", visit: lastMonth, status: models.SubmissionRejected},
		{device: "IM-100202", visit: today, status: models.SubmissionPending},
	}

	for _, e := range entries {
		device := devices[e.device]
		submission := &models.Submission{
			TechnicianID: tech.ID,
			DeviceID:     device.ID,
			Type:         device.Type,
			VisitDate:    e.visit.Format(time.DateOnly),
			HalfMonth:    models.HalfMonth(e.visit),
			JobStatus:    "Ok",
			Status:       e.status,
			CreatedAt:    time.Now(),
		}
		if e.status == models.SubmissionRejected {
			remarks := "Photos of the power panel are missing"
			submission.Remarks = &remarks
		}
		if err := store.CreateSubmission(ctx, submission); err != nil {
			return fmt.Errorf("seed: submission for %s: %w", e.device, err)
		}
	}

	return nil
}
