package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a prefixed random identifier, e.g. "run_1a2b3c...".
func New(prefix string) string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("id: read random bytes: %v", err))
	}
	return prefix + "_" + hex.EncodeToString(buf)
}
