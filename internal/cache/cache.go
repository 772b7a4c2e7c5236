// Package cache stores computed group state between requests.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a JSON object cache with per-entry expiry
type Cache interface {
	// Get decodes the value stored under key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GroupSummaryKey is the key holding a group's netted balance matrix
func GroupSummaryKey(groupID int64) string {
	return fmt.Sprintf("summary:group:%d", groupID)
}
