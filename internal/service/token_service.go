package service

import (
	"context"
	"time"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenRevocationService remembers revoked token IDs until the tokens would
// have expired anyway.
type TokenRevocationService struct {
	store TTLStore
}

func NewTokenRevocationService(store TTLStore) *TokenRevocationService {
	return &TokenRevocationService{store: store}
}

// Revoke blocks tokenID until expiresAt. Already expired tokens are ignored.
func (s *TokenRevocationService) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.store.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl)
}

func (s *TokenRevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := s.store.Get(ctx, revokedTokenPrefix+tokenID)
	return found, err
}
