package calendar

import (
	"crypto/sha1"

	"github.com/google/uuid"
)

// NewUID derives a stable identifier from semantic event content, so
// repeated builds of the same logical event republish under the same id.
// The first 16 bytes of the content's SHA-1 digest are formatted as a UUID
// so calendar consumers accept it.
func NewUID(content string) string {
	sum := sha1.Sum([]byte(content))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// Unreachable: the slice is always 16 bytes.
		panic(err)
	}
	return id.String()
}
