package mimemail

import (
	"crypto/rand"
	"math/big"
)

const (
	// BoundaryPrefix starts every generated multipart boundary.
	BoundaryPrefix = "boundary-"

	// DefaultBoundaryLength is the number of random base-36 characters after the prefix.
	DefaultBoundaryLength = 13

	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// BoundaryGenerator returns a fresh multipart boundary token.
type BoundaryGenerator func() string

// RandomBoundary returns a generator that appends n random base-36 characters
// to BoundaryPrefix. Values of n below 10 are raised to 10.
func RandomBoundary(n int) BoundaryGenerator {
	if n < 10 {
		n = 10
	}
	return func() string {
		return BoundaryPrefix + randomBase36(n)
	}
}

// StaticBoundary returns a generator that always yields token.
func StaticBoundary(token string) BoundaryGenerator {
	return func() string {
		return token
	}
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36Alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		buf[i] = base36Alphabet[idx.Int64()]
	}
	return string(buf)
}
