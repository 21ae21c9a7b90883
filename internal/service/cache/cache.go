package cache

import "time"

// Cache is a minimal TTL cache API for response memoization.
type Cache interface {
	Get(key string) (v any, ok bool)
	Set(key string, v any, ttl time.Duration)
}
