package config

import (
	"os"
	"strings"
)

// RotatableErrorCodes are HTTP status codes that should trigger key rotation.
var RotatableErrorCodes = []int{401, 403, 429}

// KeyRotator manages a pool of API keys with failover rotation.
// Rotation moves forward only; when the pool is exhausted the last
// error is surfaced to the caller.
type KeyRotator struct {
	keys       []string
	currentIdx int
}

// NewKeyRotator creates a KeyRotator over the given keys.
func NewKeyRotator(keys []string) *KeyRotator {
	var cleaned []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &KeyRotator{keys: cleaned}
}

// NewKeyRotatorFromEnv creates a KeyRotator from a comma-separated
// environment variable.
func NewKeyRotatorFromEnv(envVar string) *KeyRotator {
	return NewKeyRotator(strings.Split(os.Getenv(envVar), ","))
}

// GetCurrentKey returns the current active API key, or "" if none.
func (kr *KeyRotator) GetCurrentKey() string {
	if kr.currentIdx >= len(kr.keys) {
		return ""
	}
	return kr.keys[kr.currentIdx]
}

// GetKeyCount returns the total number of keys.
func (kr *KeyRotator) GetKeyCount() int { return len(kr.keys) }

// GetCurrentIndex returns the current key index (0-based).
func (kr *KeyRotator) GetCurrentIndex() int { return kr.currentIdx }

// HasKeys returns true if there are any keys configured.
func (kr *KeyRotator) HasKeys() bool { return len(kr.keys) > 0 }

// Rotate moves to the next available API key.
func (kr *KeyRotator) Rotate() (string, error) {
	if kr.currentIdx+1 >= len(kr.keys) {
		return "", ErrNoAvailableKeys
	}
	kr.currentIdx++
	return kr.keys[kr.currentIdx], nil
}
