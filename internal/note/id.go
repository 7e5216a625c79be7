package note

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	idLength   = 16
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewID generates a random base36 note id of length 16.
func NewID() string {
	var b strings.Builder
	b.Grow(idLength)
	for i := 0; i < idLength; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return b.String()
}

// ParseID validates a note id: exactly 16 base36 characters (0-9, a-z).
// Input is trimmed and lowercased before validation.
func ParseID(input string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(input))
	if id == "" {
		return "", fmt.Errorf("note id is empty")
	}
	if len(id) != idLength {
		return "", fmt.Errorf("note id must be %d characters, got %d", idLength, len(id))
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return "", fmt.Errorf("note id %q contains invalid characters", id)
		}
	}
	return id, nil
}
