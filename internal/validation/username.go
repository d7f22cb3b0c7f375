package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const (
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 150
	// MinPasswordLen минимальная длина пароля техника
	MinPasswordLen = 8
)

// ErrRequired пустое обязательное поле
var ErrRequired = errors.New("This field is required.")

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
func ValidateUsername(username string) error {
	if username == "" {
		return ErrRequired
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("Ensure this field has no more than %d characters.", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return errors.New("Username must contain only letters, numbers, and underscores")
	}

	return nil
}

// ValidatePassword проверяет пароль техника.
// Возвращает все нарушения сразу, как валидаторы паролей Django.
func ValidatePassword(password, username string) []string {
	if password == "" {
		return []string{ErrRequired.Error()}
	}

	var problems []string
	if len([]rune(password)) < MinPasswordLen {
		problems = append(problems,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLen))
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		problems = append(problems, "The password is too similar to the username.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// ValidateCity проверяет, что город задан
func ValidateCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return errors.New("City is required")
	}
	return nil
}

// ValidateTechnician проверяет поля новой учетной записи техника.
// Ключи результата совпадают с именами полей запроса, пустой результат означает успех.
func ValidateTechnician(username, password, city string) map[string][]string {
	fields := make(map[string][]string)
	if err := ValidateUsername(username); err != nil {
		fields["username"] = []string{err.Error()}
	}
	if problems := ValidatePassword(password, username); len(problems) > 0 {
		fields["password"] = problems
	}
	if err := ValidateCity(city); err != nil {
		fields["city"] = []string{err.Error()}
	}
	return fields
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
