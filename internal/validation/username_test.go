package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		errMsg   string
		wantErr  bool
	}{
		{name: "valid username - lowercase", username: "tech1"},
		{name: "valid username - mixed case", username: "RiyadhTech"},
		{name: "valid username - with underscore", username: "tech_riyadh"},
		{name: "valid username - single char", username: "a"},
		{name: "valid username - max length", username: strings.Repeat("a", MaxUsernameLen)},
		{
			name:     "invalid - empty username",
			username: "",
			wantErr:  true,
			errMsg:   "This field is required.",
		},
		{
			name:     "invalid - too long",
			username: strings.Repeat("a", MaxUsernameLen+1),
			wantErr:  true,
			errMsg:   "no more than 150 characters",
		},
		{
			name:     "invalid - space",
			username: "tech one",
			wantErr:  true,
			errMsg:   "only letters, numbers, and underscores",
		},
		{
			name:     "invalid - dash",
			username: "tech-1",
			wantErr:  true,
			errMsg:   "only letters, numbers, and underscores",
		},
		{
			name:     "invalid - cyrillic",
			username: "техник",
			wantErr:  true,
			errMsg:   "only letters, numbers, and underscores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		want     []string
	}{
		{name: "valid", password: "S3cure-pass", username: "tech1"},
		{name: "empty", password: "", want: []string{"This field is required."}},
		{
			name:     "too short",
			password: "abc12",
			want:     []string{"This password is too short. It must contain at least 8 characters."},
		},
		{
			name:     "numeric and short",
			password: "12345",
			want: []string{
				"This password is too short. It must contain at least 8 characters.",
				"This password is entirely numeric.",
			},
		},
		{
			name:     "contains username",
			password: "Tech1Password",
			username: "tech1",
			want:     []string{"The password is too similar to the username."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password, tt.username))
		})
	}
}

func TestValidateTechnician(t *testing.T) {
	assert.Empty(t, ValidateTechnician("tech1", "S3cure-pass", "Riyadh"))

	fields := ValidateTechnician("bad name", "short", "  ")
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"Username must contain only letters, numbers, and underscores"}, fields["username"])
	assert.Equal(t, []string{"City is required"}, fields["city"])
	assert.Len(t, fields["password"], 1)
}
