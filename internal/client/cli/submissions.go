package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/iudanet/atmtrack/internal/client/maintenance"
	"github.com/iudanet/atmtrack/pkg/api"
)

// SubmissionsOptions параметры команды submissions list
type SubmissionsOptions struct {
	Filter maintenance.SubmissionFilter
	Search string
}

func (c *Cli) runSubmissions(ctx context.Context, opts SubmissionsOptions) error {
	if err := c.requireRole(api.RoleSupervisor); err != nil {
		return err
	}

	resp, err := c.maintenance.Submissions(ctx, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	submissions := maintenance.SortSubmissions(maintenance.SearchSubmissions(resp.Submissions, opts.Search))

	c.io.Println("=== Submissions ===")
	c.io.Println()

	if len(submissions) == 0 {
		c.io.Println("No submissions found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINTERACTION\tTECHNICIAN\tCITY\tTYPE\tVISIT DATE\tSTATUS")
	for _, s := range submissions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, orDash(s.DeviceInfo.InteractionID), orDash(s.TechnicianName), orDash(s.DeviceInfo.City),
			orDash(s.Type), orDash(s.VisitDate), s.Status)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to print submissions: %w", err)
	}

	counts := maintenance.CountByStatus(submissions)
	c.io.Println()
	c.io.Printf("Total: %d  Pending: %d  Approved: %d  Rejected: %d\n",
		counts.Total, counts.Pending, counts.Approved, counts.Rejected)
	return nil
}

func (c *Cli) runSubmissionShow(ctx context.Context, id int64) error {
	if err := c.requireRole(api.RoleSupervisor); err != nil {
		return err
	}

	submission, err := c.maintenance.Submission(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}

	if err := submissionTmpl.Execute(c.io, submission); err != nil {
		return fmt.Errorf("failed to print submission: %w", err)
	}
	return nil
}

func (c *Cli) runApprove(ctx context.Context, id int64, remarks string) error {
	if err := c.requireRole(api.RoleSupervisor); err != nil {
		return err
	}

	resp, err := c.maintenance.Approve(ctx, id, remarks)
	if err != nil {
		return fmt.Errorf("failed to approve submission: %w", err)
	}

	c.printReview(resp, "approved")
	return nil
}

func (c *Cli) runReject(ctx context.Context, id int64, remarks string) error {
	if err := c.requireRole(api.RoleSupervisor); err != nil {
		return err
	}

	if remarks == "" {
		input, err := c.io.ReadInput("Rejection reason: ")
		if err != nil {
			return fmt.Errorf("failed to read remarks: %w", err)
		}
		remarks = input
	}

	resp, err := c.maintenance.Reject(ctx, id, remarks)
	if err != nil {
		return fmt.Errorf("failed to reject submission: %w", err)
	}

	c.printReview(resp, "rejected")
	return nil
}

func (c *Cli) printReview(resp *api.ReviewResponse, action string) {
	if resp.Message != "" {
		c.io.Printf("✓ %s\n", resp.Message)
	} else {
		c.io.Printf("✓ Submission %d %s\n", resp.Submission.ID, action)
	}
	if resp.Submission.ID != 0 {
		c.io.Printf("Status: %s\n", resp.Submission.Status)
	}
}
