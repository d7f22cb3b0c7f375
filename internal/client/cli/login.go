package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/atmtrack/internal/client/session"
)

func (c *Cli) runLogin(ctx context.Context, username string, passwords Passwords) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	// Запрашиваем username, если он не передан флагом
	if username == "" {
		input, err := c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = input
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	password, err := c.getPassword(passwords, "Password: ")
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	if err := c.session.Login(ctx, username, password); err != nil {
		var loginErr *session.LoginError
		if errors.As(err, &loginErr) {
			return fmt.Errorf("login failed: %s", loginErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	sess, ok := c.session.Current()
	if !ok {
		return fmt.Errorf("login failed: session was not established")
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", sess.User.Username)
	c.io.Printf("Role:     %s\n", sess.User.Role)
	if sess.User.City != "" {
		c.io.Printf("City:     %s\n", sess.User.City)
	}
	c.io.Printf("Access token expires: %s\n", sess.ExpiresAt.Local().Format(time.RFC3339))
	c.io.Println()
	c.io.Println("Your session has been saved.")

	return nil
}
