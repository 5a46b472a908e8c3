package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const resetCodePrefix = "auth:reset:"

// ResetCodeService issues single-use numeric password reset codes.
type ResetCodeService struct {
	store TTLStore
	ttl   time.Duration
}

func NewResetCodeService(store TTLStore, ttl time.Duration) *ResetCodeService {
	return &ResetCodeService{store: store, ttl: ttl}
}

func (s *ResetCodeService) TTL() time.Duration {
	return s.ttl
}

// Issue stores a fresh 6-digit code for email, replacing any earlier one.
func (s *ResetCodeService) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.store.Set(ctx, key(email), code, s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Consume reports whether code matches the stored one and, if so, deletes
// it. Of two concurrent callers with the right code only one succeeds.
func (s *ResetCodeService) Consume(ctx context.Context, email, code string) (bool, error) {
	stored, found, err := s.store.Get(ctx, key(email))
	if err != nil || !found {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	taken, found, err := s.store.Take(ctx, key(email))
	if err != nil || !found {
		return false, err
	}
	return taken == code, nil
}

func key(email string) string {
	return resetCodePrefix + strings.ToLower(strings.TrimSpace(email))
}
