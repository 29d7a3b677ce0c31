package crypto

const (
	// HKDFContext is the context string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "pqencrypt:envelope:v1"

	// SymmetricKeySize is the size of the derived AEAD key in bytes.
	SymmetricKeySize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// XNonceSize is the size of an XChaCha20-Poly1305 nonce in bytes.
	XNonceSize = 24
	// XTagSize is the size of a Poly1305 authentication tag in bytes.
	XTagSize = 16

	// PassphraseKeySize is the length of the Argon2id output mixed into HKDF.
	PassphraseKeySize = 32

	// Argon2id defaults. Memory is in KiB.
	DefaultArgonTime    = 3
	DefaultArgonMemory  = 64 * 1024
	DefaultArgonThreads = 4
)
