package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/atmtrack/internal/client/storage"
)

var (
	keyTokens = []byte(storage.KeyTokens)
	keyUser   = []byte(storage.KeyUser)
)

// SaveSession stores tokens and user record in a single transaction
func (s *Storage) SaveSession(ctx context.Context, session *storage.SessionData) error {
	if session == nil {
		return fmt.Errorf("session data is nil")
	}

	// Сериализуем данные до открытия транзакции
	tokens, err := json.Marshal(session.Tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		if err := bucket.Put(keyTokens, tokens); err != nil {
			return fmt.Errorf("failed to save tokens: %w", err)
		}
		if err := bucket.Put(keyUser, user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		return nil
	})
}

// LoadSession retrieves stored session
func (s *Storage) LoadSession(ctx context.Context) (*storage.SessionData, error) {
	var session *storage.SessionData

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		tokens := bucket.Get(keyTokens)
		user := bucket.Get(keyUser)

		if tokens == nil && user == nil {
			return storage.ErrSessionNotFound
		}
		// Одна половина сессии без другой считается повреждением
		if tokens == nil || user == nil {
			return fmt.Errorf("%w: partial session", storage.ErrSessionCorrupted)
		}

		session = &storage.SessionData{}
		if err := json.Unmarshal(tokens, &session.Tokens); err != nil {
			return fmt.Errorf("%w: tokens: %v", storage.ErrSessionCorrupted, err)
		}
		if err := json.Unmarshal(user, &session.User); err != nil {
			return fmt.Errorf("%w: user: %v", storage.ErrSessionCorrupted, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return session, nil
}

// ClearSession removes both session keys (logout)
func (s *Storage) ClearSession(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		// Delete на отсутствующем ключе не возвращает ошибку
		if err := bucket.Delete(keyTokens); err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}
		if err := bucket.Delete(keyUser); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}
