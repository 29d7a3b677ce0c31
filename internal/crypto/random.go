package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for key, seed and nonce generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func reader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// RandomBytes returns n bytes from the cryptographic random source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(reader(), b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}
