// Package cache provides collaborator-side caching. The request core never
// caches evidence across requests; only upstream concerns like embeddings go
// through here.
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

// Key generates a namespaced cache key from arbitrary text
func Key(namespace, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "byline:" + namespace + ":" + hex.EncodeToString(hash[:])
}
