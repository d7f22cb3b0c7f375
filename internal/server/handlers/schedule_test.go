package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/atmtrack/pkg/api"
)

func TestNextDueDate(t *testing.T) {
	early := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.December, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		now        time.Time
		want       *api.DueDate
		name       string
		deviceType string
		halves     []int
	}{
		{
			name:       "cleaning not submitted in current half",
			deviceType: TypeCleaning1,
			now:        early,
			want:       &api.DueDate{Date: "2026-03-10", HalfMonth: 1, Description: "Half 1 of March 2026"},
		},
		{
			name:       "cleaning submitted in first half",
			deviceType: TypeCleaning2,
			halves:     []int{1},
			now:        early,
			want:       &api.DueDate{Date: "2026-03-16", HalfMonth: 2, Description: "Half 2 of March 2026"},
		},
		{
			name:       "cleaning submitted in second half rolls over year",
			deviceType: TypeCleaning1,
			halves:     []int{2},
			now:        late,
			want:       &api.DueDate{Date: "2027-01-01", HalfMonth: 1, Description: "Half 1 of January 2027"},
		},
		{
			name:       "cleaning only previous half submitted",
			deviceType: TypeCleaning1,
			halves:     []int{1},
			now:        late,
			want:       &api.DueDate{Date: "2026-12-20", HalfMonth: 2, Description: "Half 2 of December 2026"},
		},
		{
			name:       "electrical not submitted this month",
			deviceType: TypeElectrical,
			now:        early,
			want:       &api.DueDate{Date: "2026-03-10", Month: "March 2026", Description: "March 2026"},
		},
		{
			name:       "security submitted this month",
			deviceType: TypeSecurity,
			halves:     []int{1},
			now:        late,
			want:       &api.DueDate{Date: "2027-01-01", Month: "January 2027", Description: "January 2027"},
		},
		{
			name:       "stand alone has no schedule",
			deviceType: TypeStandAlone,
			now:        early,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextDueDate(tt.deviceType, tt.halves, tt.now))
		})
	}
}

func TestSubmissionStatus(t *testing.T) {
	early := time.Date(2026, time.March, 15, 23, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, api.DevicePending, submissionStatus(nil, early))
	assert.Equal(t, api.DeviceSubmitted, submissionStatus([]int{1}, early))
	assert.Equal(t, api.DevicePending, submissionStatus([]int{1}, late))
	assert.Equal(t, api.DeviceSubmitted, submissionStatus([]int{1, 2}, late))
}
