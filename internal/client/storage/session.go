package storage

import (
	"context"

	"github.com/iudanet/atmtrack/pkg/api"
)

// Ключи, под которыми сессия хранится на клиенте
const (
	KeyTokens = "tokens"
	KeyUser   = "user"
)

// SessionStorage defines interface for persisting the authenticated session on client.
// Tokens and user record are always written and removed together.
type SessionStorage interface {
	// SaveSession stores tokens and user atomically
	SaveSession(ctx context.Context, session *SessionData) error

	// LoadSession retrieves stored session
	// Returns ErrSessionNotFound if nothing is stored and
	// ErrSessionCorrupted if stored data is partial or not valid JSON
	LoadSession(ctx context.Context) (*SessionData, error)

	// ClearSession removes both keys. Safe to call when nothing is stored.
	ClearSession(ctx context.Context) error
}

// Tokens пара токенов в формате хранилища
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SessionData represents persisted session. Expiry is not stored:
// it is recomputed from the access token on load.
type SessionData struct {
	Tokens Tokens   `json:"tokens"`
	User   api.User `json:"user"`
}
