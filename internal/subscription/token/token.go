// Package token generates confirmation tokens. Tokens are caller-opaque and
// URL-safe; uniqueness is enforced by the storage layer, not here.
package token

import (
	"math/rand/v2"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length   = 25
)

// Generate returns a 25-character token drawn uniformly from the alphanumeric
// alphabet. It never fails.
func Generate() string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
