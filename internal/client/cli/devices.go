package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iudanet/atmtrack/internal/client/maintenance"
	"github.com/iudanet/atmtrack/pkg/api"
)

// DevicesOptions параметры команды devices
type DevicesOptions struct {
	Type   string
	Region string
	Status string // submitted, pending или All
	Search string
}

func (c *Cli) runDevices(ctx context.Context, opts DevicesOptions) error {
	if err := c.requireRole(api.RoleTechnician); err != nil {
		return err
	}

	resp, err := c.maintenance.Devices(ctx, maintenance.DeviceFilter{
		Type:   opts.Type,
		Region: opts.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	devices := maintenance.FilterDevicesBySubmission(resp.Devices, opts.Status)
	devices = maintenance.SortDevices(maintenance.SearchDevices(devices, opts.Search))

	c.io.Println("=== Devices ===")
	c.io.Println()

	if len(devices) == 0 {
		c.io.Println("No devices found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINTERACTION\tTYPE\tCITY\tREGION\tPROBLEM\tSTATUS\tNEXT DUE")
	for _, d := range devices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.InteractionID, orDash(d.Type), orDash(d.City), orDash(d.Region),
			orDash(d.GFMProblemType), orDash(d.SubmissionStatus), dueDate(d.NextDueDate))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to print devices: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %d device(s)\n", len(devices))
	return nil
}

func dueDate(d *api.DueDate) string {
	if d == nil {
		return "-"
	}
	if d.Description != "" {
		return d.Description
	}
	return orDash(d.Date)
}

// SubmitOptions параметры команды devices submit
type SubmitOptions struct {
	VisitDate string // YYYY-MM-DD, по умолчанию сегодня
	JobStatus string
	Remarks   string
}

func (c *Cli) runSubmit(ctx context.Context, deviceID int64, opts SubmitOptions) error {
	if err := c.requireRole(api.RoleTechnician); err != nil {
		return err
	}

	visitDate := strings.TrimSpace(opts.VisitDate)
	if visitDate == "" {
		visitDate = time.Now().Format(time.DateOnly)
	}

	resp, err := c.maintenance.Submit(ctx, api.SubmitRequest{
		DeviceID:  deviceID,
		VisitDate: visitDate,
		JobStatus: jobStatus(opts.JobStatus),
		Remarks:   opts.Remarks,
	})
	if err != nil {
		return fmt.Errorf("failed to submit report: %w", err)
	}

	return submitTmpl.Execute(c.io, resp)
}

// jobStatus приводит ввод пользователя к Ok или Not Ok
func jobStatus(s string) string {
	switch strings.ToLower(strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "")) {
	case "", "ok":
		return api.JobOk
	case "notok":
		return api.JobNotOk
	default:
		return s
	}
}
