package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomToken returns length random bytes hex-encoded.
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateSessionID returns an opaque id for a cached session.
func GenerateSessionID() (string, error) {
	return GenerateRandomToken(32)
}
