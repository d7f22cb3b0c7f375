package cli

import (
	"context"
	"time"
)

func (c *Cli) runStatus(_ context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	sess, ok := c.session.Current()
	if !ok {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'atmtrack login' to authenticate.")
		return nil
	}

	remaining := time.Until(sess.ExpiresAt)

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", sess.User.Username)
	c.io.Printf("Role: %s\n", sess.User.Role)
	if sess.User.City != "" {
		c.io.Printf("City: %s\n", sess.User.City)
	}
	c.io.Printf("Token expires: %s\n", sess.ExpiresAt.Local().Format(time.RFC3339))

	if remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("⚠️  Token has expired and will be refreshed on the next request.")
	}

	return nil
}
