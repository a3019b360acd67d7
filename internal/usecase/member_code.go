package usecase

import (
	"crypto/rand"
	"fmt"
	"io"
)

const memberCodePrefix = "NT"

// Uniqueness of generated member codes is backstopped by the store's unique
// constraint; this many insert attempts are made before giving up.
const memberCodeAttempts = 3

// memberCode derives the human-readable code for the given serial, e.g.
// serial 1 -> "NT1001", serial 17 -> "NT17017".
func memberCode(serial int) string {
	return fmt.Sprintf("%s%d%03d", memberCodePrefix, serial, serial)
}

// generateEPinCode creates a secure, random, and human-readable activation code.
// Format: EPIN-XXXX-XXXX
func generateEPinCode() (string, error) {
	// A character set that avoids ambiguous characters like O/0, I/1, l.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 8

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	return "EPIN-" + string(buffer[0:4]) + "-" + string(buffer[4:8]), nil
}
