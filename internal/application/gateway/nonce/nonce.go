// Package nonce issues one-time tokens protecting the pay-now form against
// replayed submissions. Tokens are bound to {client, session} and consumed
// on first verification.
package nonce

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// Store persists tokens with a TTL. Take returns the stored token and
// removes it in the same step so a token can never verify twice.
type Store interface {
	Save(ctx context.Context, key, token string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
}

// Service issues and verifies one-time pay-now tokens.
type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{store: store, ttl: ttl}
}

// Issue generates a fresh token for the client's session, replacing any
// previous one.
func (s *Service) Issue(ctx context.Context, clientID uint, sessionID string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.store.Save(ctx, nonceKey(clientID, sessionID), token, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	return token, nil
}

// Verify consumes the stored token for the client's session and compares it
// against the submitted one. The stored token is gone after this call
// whether or not the comparison succeeds.
func (s *Service) Verify(ctx context.Context, clientID uint, sessionID, token string) (bool, error) {
	stored, err := s.store.Take(ctx, nonceKey(clientID, sessionID))
	if err != nil {
		return false, err
	}
	if stored == "" || token == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

func nonceKey(clientID uint, sessionID string) string {
	return fmt.Sprintf("paynow_nonce:%d:%s", clientID, sessionID)
}
