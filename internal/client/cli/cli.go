package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/iudanet/atmtrack/internal/client/gateway"
	"github.com/iudanet/atmtrack/internal/client/iocli"
	"github.com/iudanet/atmtrack/internal/client/maintenance"
	"github.com/iudanet/atmtrack/internal/client/session"
	"github.com/iudanet/atmtrack/pkg/api"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного входа
const PasswordEnv = "ATMTRACK_PASSWORD"

// Passwords источники пароля, переданные флагами
type Passwords struct {
	Env      string // имя переменной окружения, пусто если не используется
	FromFile string
	FromArgs string
}

type Cli struct {
	io          iocli.IO
	session     *session.Manager
	maintenance maintenance.Service
}

func New(io iocli.IO, sess *session.Manager, svc maintenance.Service) *Cli {
	return &Cli{
		io:          io,
		session:     sess,
		maintenance: svc,
	}
}

// getPassword retrieves password from various sources with priority:
// 1. Environment variable passwords.Env (ATMTRACK_PASSWORD for login)
// 2. File specified in --password-file
// 3. Command-line parameter --password
// 4. Interactive prompt (fallback)
func (c *Cli) getPassword(passwords Passwords, prompt string) (string, error) {
	// Priority 1: Environment variable
	if passwords.Env != "" {
		if envPassword := os.Getenv(passwords.Env); envPassword != "" {
			return envPassword, nil
		}
	}

	// Priority 2: File
	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: CLI parameter
	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// requireRole проверяет, что текущий пользователь может выполнить команду
func (c *Cli) requireRole(roles ...api.Role) error {
	err := c.session.Authorize(roles...)
	if err == nil {
		return nil
	}

	var forbidden *session.ForbiddenError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return fmt.Errorf("not authenticated. Please run 'atmtrack login' first")
	case errors.As(err, &forbidden):
		return fmt.Errorf("access denied: %w", forbidden)
	default:
		return err
	}
}

// FormatError возвращает текст ошибки для пользователя вместе с ошибками полей
func FormatError(err error) string {
	if gateway.IsKind(err, gateway.KindAuth) {
		return err.Error() + "\nRun 'atmtrack login' to authenticate."
	}

	fields := gateway.FieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(err.Error())
	for _, key := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", key, fields[key])
	}
	return b.String()
}

// parseID разбирает числовой идентификатор из аргумента команды
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive number", arg)
	}
	return id, nil
}

// orDash заменяет пустое значение прочерком в таблицах
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
