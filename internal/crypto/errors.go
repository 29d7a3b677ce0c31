package crypto

import "errors"

var (
	// ErrInvalidSecretKeySize is returned when the secret key size is invalid.
	ErrInvalidSecretKeySize = errors.New("invalid secret key size")

	// ErrInvalidPublicKeySize is returned when the public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidCiphertextSize is returned when the KEM ciphertext size is invalid.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrDecryptionFailed is returned when AEAD authentication fails.
	// It never says which input was wrong.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AEAD key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrCiphertextTooShort is returned when a sealed payload cannot hold
	// a nonce and a tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrUnsupportedAlgorithm is returned for an unknown family or parameter set.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrWrongFamily is returned when a KEM operation is requested with a
	// signature algorithm or vice versa.
	ErrWrongFamily = errors.New("algorithm family does not support this operation")
)
