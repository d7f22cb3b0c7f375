package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/atmtrack/pkg/api"
)

// runStats показывает статистику в зависимости от роли пользователя
func (c *Cli) runStats(ctx context.Context) error {
	if err := c.requireRole(api.RoleSupervisor, api.RoleHost); err != nil {
		return err
	}

	user, _ := c.session.User()
	if user.Role == api.RoleHost {
		stats, err := c.maintenance.HostStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get statistics: %w", err)
		}
		return hostStatsTmpl.Execute(c.io, stats)
	}

	stats, err := c.maintenance.SupervisorStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}
	return supervisorStatsTmpl.Execute(c.io, stats)
}
