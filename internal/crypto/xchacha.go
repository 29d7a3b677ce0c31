package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// NewXNonce returns a fresh 24-byte XChaCha20-Poly1305 nonce.
func NewXNonce() ([]byte, error) {
	return RandomBytes(XNonceSize)
}

// SealX encrypts plaintext with XChaCha20-Poly1305 under a caller-held nonce.
// The nonce is not included in the output.
func SealX(key, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != XNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), XNonceSize)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20poly1305.KeySize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// OpenX decrypts ciphertext produced by SealX.
func OpenX(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != XNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), XNonceSize)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20poly1305.KeySize)
	}
	if len(ciphertext) < XTagSize {
		return nil, ErrCiphertextTooShort
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
