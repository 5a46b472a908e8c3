package service

import (
	"context"
	"time"
)

// TTLStore is a keyed store whose entries expire on their own. It replaces
// process-local maps for revoked tokens and password reset codes.
type TTLStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Take returns and deletes the value in one step.
	Take(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, key string) error
}
