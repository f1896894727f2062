package common

import (
	"crypto/rand"
	"fmt"
)

const linkCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LinkCodeLength is the fixed length of Telegram link codes.
const LinkCodeLength = 6

// GenerateLinkCode returns a random uppercase alphanumeric one-time code.
func GenerateLinkCode() (string, error) {
	buf := make([]byte, LinkCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = linkCodeAlphabet[int(b)%len(linkCodeAlphabet)]
	}
	return string(buf), nil
}
