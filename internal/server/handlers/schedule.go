package handlers

import (
	"fmt"
	"slices"
	"time"

	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/pkg/api"
)

// Типы устройств
const (
	TypeCleaning1  = api.TypeCleaning1
	TypeCleaning2  = api.TypeCleaning2
	TypeElectrical = api.TypeElectrical
	TypeSecurity   = api.TypeSecurity
	TypeStandAlone = api.TypeStandAlone
)

// submissionStatus возвращает submitted, если за текущий полумесяц уже есть отчет
func submissionStatus(halves []int, now time.Time) string {
	if slices.Contains(halves, models.HalfMonth(now)) {
		return api.DeviceSubmitted
	}
	return api.DevicePending
}

// nextDueDate считает срок следующего визита.
// Уборка (Cleaning1, Cleaning2) по полумесяцам, электрика и охрана раз в месяц.
// halves содержит полумесяцы текущего месяца, за которые уже есть отчеты.
func nextDueDate(deviceType string, halves []int, now time.Time) *api.DueDate {
	switch deviceType {
	case TypeCleaning1, TypeCleaning2:
		half := models.HalfMonth(now)
		if !slices.Contains(halves, half) {
			return &api.DueDate{
				Date:        now.Format(time.DateOnly),
				HalfMonth:   half,
				Description: fmt.Sprintf("Half %d of %s", half, now.Format("January 2006")),
			}
		}
		if half == 1 {
			next := time.Date(now.Year(), now.Month(), 16, 0, 0, 0, 0, now.Location())
			return &api.DueDate{
				Date:        next.Format(time.DateOnly),
				HalfMonth:   2,
				Description: "Half 2 of " + now.Format("January 2006"),
			}
		}
		next := firstOfNextMonth(now)
		return &api.DueDate{
			Date:        next.Format(time.DateOnly),
			HalfMonth:   1,
			Description: "Half 1 of " + next.Format("January 2006"),
		}

	case TypeElectrical, TypeSecurity:
		due := now
		if len(halves) > 0 {
			due = firstOfNextMonth(now)
		}
		month := due.Format("January 2006")
		return &api.DueDate{
			Date:        due.Format(time.DateOnly),
			Month:       month,
			Description: month,
		}
	}

	return nil
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func toAPIDevice(d *models.Device, halves []int, now time.Time) api.Device {
	return api.Device{
		ID:               d.ID,
		InteractionID:    d.InteractionID,
		GFMCostCenter:    d.GFMCostCenter,
		Region:           d.Region,
		GFMProblemType:   d.GFMProblemType,
		GFMProblemDate:   d.GFMProblemDate,
		City:             d.City,
		Type:             d.Type,
		SubmissionStatus: submissionStatus(halves, now),
		NextDueDate:      nextDueDate(d.Type, halves, now),
		CreatedAt:        d.CreatedAt,
	}
}

func toAPISubmission(s *models.Submission) api.Submission {
	return api.Submission{
		ID:             s.ID,
		Technician:     s.TechnicianID,
		TechnicianName: s.TechnicianName,
		TechnicianCity: s.TechnicianCity,
		Device:         s.DeviceID,
		DeviceInfo: api.DeviceInfo{
			InteractionID: s.Device.InteractionID,
			GFMCostCenter: s.Device.GFMCostCenter,
			City:          s.Device.City,
			Region:        s.Device.Region,
			Type:          s.Device.Type,
		},
		Type:      s.Type,
		VisitDate: s.VisitDate,
		HalfMonth: s.HalfMonth,
		Status:    s.Status,
		PDFURL:    s.PDFURL,
		Remarks:   s.Remarks,
		CreatedAt: s.CreatedAt,
	}
}
