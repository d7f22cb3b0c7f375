package maintenance

import (
	"cmp"
	"slices"
	"strings"

	"github.com/iudanet/atmtrack/pkg/api"
)

// Порядок статусов отчетов в списке: сначала требующие внимания
var submissionOrder = map[string]int{
	api.SubmissionPending:  0,
	api.SubmissionRejected: 1,
	api.SubmissionApproved: 2,
}

// SearchSubmissions отбирает отчеты, у которых interaction id устройства
// или имя техника содержат query (без учета регистра)
func SearchSubmissions(list []api.Submission, query string) []api.Submission {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]api.Submission, 0, len(list))
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.DeviceInfo.InteractionID), q) ||
			strings.Contains(strings.ToLower(s.TechnicianName), q) {
			out = append(out, s)
		}
	}
	return out
}

// SortSubmissions сортирует по статусу (Pending, Rejected, Approved),
// внутри статуса от новых к старым. Исходный срез не меняется.
func SortSubmissions(list []api.Submission) []api.Submission {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b api.Submission) int {
		if c := cmp.Compare(statusRank(a.Status), statusRank(b.Status)); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func statusRank(status string) int {
	if rank, ok := submissionOrder[status]; ok {
		return rank
	}
	return len(submissionOrder)
}

// StatusCounts количество отчетов по статусам
type StatusCounts struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// CountByStatus считает отчеты по статусам
func CountByStatus(list []api.Submission) StatusCounts {
	counts := StatusCounts{Total: len(list)}
	for _, s := range list {
		switch s.Status {
		case api.SubmissionPending:
			counts.Pending++
		case api.SubmissionApproved:
			counts.Approved++
		case api.SubmissionRejected:
			counts.Rejected++
		}
	}
	return counts
}

// SearchDevices отбирает устройства по interaction id или cost center
func SearchDevices(list []api.Device, query string) []api.Device {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]api.Device, 0, len(list))
	for _, d := range list {
		if strings.Contains(strings.ToLower(d.InteractionID), q) ||
			strings.Contains(strings.ToLower(d.GFMCostCenter), q) {
			out = append(out, d)
		}
	}
	return out
}

// FilterDevicesBySubmission оставляет устройства с заданным статусом сдачи отчета
// (submitted или pending). Пустой статус или "All" возвращает список без изменений.
func FilterDevicesBySubmission(list []api.Device, status string) []api.Device {
	if status == "" || strings.EqualFold(status, FilterAll) {
		return list
	}

	out := make([]api.Device, 0, len(list))
	for _, d := range list {
		if strings.EqualFold(d.SubmissionStatus, status) {
			out = append(out, d)
		}
	}
	return out
}

// SortDevices ставит устройства без отчета за текущий период первыми,
// затем сортирует по interaction id. Исходный срез не меняется.
func SortDevices(list []api.Device) []api.Device {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b api.Device) int {
		ap, bp := a.SubmissionStatus != api.DeviceSubmitted, b.SubmissionStatus != api.DeviceSubmitted
		if ap != bp {
			if ap {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.InteractionID, b.InteractionID)
	})
	return out
}
