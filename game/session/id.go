package session

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// DefaultIDLength matches the short codes players type to join a session
	DefaultIDLength = 6

	maxIDAttempts = 16
)

// IDGenerator produces short base36 session identifiers
type IDGenerator struct {
	length int
}

// NewIDGenerator creates a generator for IDs of the given length
func NewIDGenerator(length int) *IDGenerator {
	if length <= 0 {
		length = DefaultIDLength
	}
	return &IDGenerator{length: length}
}

// Generate returns a fresh ID for which taken reports false. After a run of
// collisions it grows the ID by one character per attempt.
func (g *IDGenerator) Generate(taken func(id string) bool) string {
	n := g.length
	for attempt := 0; ; attempt++ {
		if attempt >= maxIDAttempts {
			n++
		}
		id := randomToken(n)
		if taken == nil || !taken(id) {
			return id
		}
	}
}

func randomToken(n int) string {
	max := big.NewInt(int64(len(idAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b[i] = idAlphabet[v.Int64()]
	}
	return string(b)
}
