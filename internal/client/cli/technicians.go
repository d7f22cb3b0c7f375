package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/iudanet/atmtrack/internal/client/maintenance"
	"github.com/iudanet/atmtrack/pkg/api"
)

func (c *Cli) runTechnicians(ctx context.Context) error {
	if err := c.requireRole(api.RoleHost); err != nil {
		return err
	}

	technicians, err := c.maintenance.Technicians(ctx)
	if err != nil {
		return fmt.Errorf("failed to list technicians: %w", err)
	}

	c.io.Println("=== Technicians ===")
	c.io.Println()

	if len(technicians) == 0 {
		c.io.Println("No technicians found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tCITY\tCREATED")
	for _, t := range technicians {
		created := "-"
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Username, orDash(t.City), created)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to print technicians: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %d technician(s)\n", len(technicians))
	return nil
}

// CreateTechnicianOptions параметры команды technicians create
type CreateTechnicianOptions struct {
	Username  string
	City      string
	Passwords Passwords
}

func (c *Cli) runCreateTechnician(ctx context.Context, opts CreateTechnicianOptions) error {
	if err := c.requireRole(api.RoleHost); err != nil {
		return err
	}

	username := strings.TrimSpace(opts.Username)
	if username == "" {
		input, err := c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(input)
	}

	city := strings.TrimSpace(opts.City)
	if city == "" {
		input, err := c.io.ReadInput("City: ")
		if err != nil {
			return fmt.Errorf("failed to read city: %w", err)
		}
		city = strings.TrimSpace(input)
	}

	password, err := c.getPassword(opts.Passwords, "Technician password: ")
	if err != nil {
		return err
	}

	technician, err := c.maintenance.CreateTechnician(ctx, api.CreateTechnicianRequest{
		Username: username,
		Password: password,
		City:     city,
	})
	if err != nil {
		return fmt.Errorf("failed to create technician: %w", err)
	}

	return technicianTmpl.Execute(c.io, technician)
}

func (c *Cli) runDeleteTechnician(ctx context.Context, id int64, confirmed bool) error {
	if err := c.requireRole(api.RoleHost); err != nil {
		return err
	}

	if !confirmed {
		c.io.Println("Deleting a technician also deletes their devices and submissions.")
		answer, err := c.io.ReadInput(fmt.Sprintf("Delete technician %d? [y/N]: ", id))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			c.io.Println("Cancelled.")
			return nil
		}
	}

	if err := c.maintenance.DeleteTechnician(ctx, id); err != nil {
		return fmt.Errorf("failed to delete technician: %w", err)
	}

	c.io.Printf("✓ Technician %d deleted\n", id)
	return nil
}

func (c *Cli) runUploadDevices(ctx context.Context, technicianID int64, path, deviceType string) error {
	if err := c.requireRole(api.RoleHost); err != nil {
		return err
	}

	rows, err := maintenance.ReadDeviceSheet(path)
	if err != nil {
		return fmt.Errorf("failed to read device list: %w", err)
	}

	resp, err := c.maintenance.ImportDevices(ctx, api.DeviceImportRequest{
		TechnicianID: technicianID,
		FileName:     filepath.Base(path),
		DeviceType:   deviceType,
		Rows:         rows,
	})
	if err != nil {
		return fmt.Errorf("failed to upload device list: %w", err)
	}

	return uploadTmpl.Execute(c.io, resp)
}

func (c *Cli) runUploads(ctx context.Context, technicianID int64) error {
	if err := c.requireRole(api.RoleHost); err != nil {
		return err
	}

	files, err := c.maintenance.UploadedFiles(ctx, technicianID)
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}
	types, err := c.maintenance.UploadedTypes(ctx, technicianID)
	if err != nil {
		return fmt.Errorf("failed to list uploaded types: %w", err)
	}

	c.io.Printf("=== Uploads for technician %d ===\n", technicianID)
	c.io.Println()

	if len(files.Files) == 0 {
		c.io.Println("No uploads found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tTYPE\tROWS\tCREATED DEVICES\tUPLOADED")
	for _, f := range files.Files {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			f.ID, f.FileName, orDash(f.DeviceType), f.RowCount, f.DevicesCreated,
			f.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to print uploads: %w", err)
	}

	c.io.Println()
	c.io.Printf("Device types: %s\n", orDash(strings.Join(types.Types, ", ")))
	c.io.Printf("Total: %d upload(s)\n", files.Count)
	return nil
}
