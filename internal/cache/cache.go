// Package cache stores oracle replies keyed by prompt so re-running a layer
// does not re-pay inference cost for prompts already answered.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a prompt and its output mode. Structured
// and free-text replies to the same prompt are distinct entries.
func Key(prompt string, structured bool) string {
	mode := "text"
	if structured {
		mode = "json"
	}
	hash := sha256.Sum256([]byte(mode + "\x00" + prompt))
	return "leanrag:v1:" + hex.EncodeToString(hash[:])
}
