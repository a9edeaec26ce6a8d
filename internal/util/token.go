package util

import (
	"crypto/rand"
	"encoding/base64"
)

const resetTokenBytes = 32

// GenerateResetToken returns a URL-safe random token suitable for embedding
// in a reset link. 32 bytes of entropy keeps the token unguessable within
// any realistic validity window.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
