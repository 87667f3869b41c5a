package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

const (
	// DefaultExpiration applies to entries set without an explicit expiration
	DefaultExpiration = 30 * time.Minute
	// DefaultCleanupInterval is how often expired entries are purged
	DefaultCleanupInterval = time.Hour
)

// key prefixes, versioned so a format change never reads stale entries
const (
	PrefixLocation = "location:v1"
)

var (
	processCache *goCache.Cache
	initOnce     sync.Once
)

// shared returns the process wide cache
func shared() *goCache.Cache {
	initOnce.Do(func() {
		processCache = goCache.New(DefaultExpiration, DefaultCleanupInterval)
	})
	return processCache
}

// GenerateKey joins prefix and params with colons
func GenerateKey(prefix string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprint(param))
	}
	return strings.Join(parts, ":")
}
