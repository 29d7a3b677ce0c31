package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// KDFParams are the Argon2id cost parameters applied to the passphrase.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams returns the parameters used when none are configured.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: DefaultArgonTime, Memory: DefaultArgonMemory, Threads: DefaultArgonThreads}
}

// DeriveKey derives a key using HKDF-SHA-512.
//
// Parameters:
//   - secret: the input key material (e.g., shared secret from KEM)
//   - salt: optional salt value; if empty, a zero-filled salt is used
//   - info: context/application-specific info for domain separation
//   - length: desired output key length in bytes
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// DeriveEnvelopeKey combines a KEM shared secret and a passphrase into an
// AEAD key.
//
// The derivation:
//  1. Argon2id(passphrase, salt) stretches the passphrase
//  2. HKDF-SHA-512 with IKM = shared secret || stretched passphrase,
//     salt = SHA-256(KEM ciphertext), info = HKDFContext || label
//
// The salt binds the key to one encapsulation, so every envelope gets its
// own key even when the passphrase is reused.
func DeriveEnvelopeKey(sharedSecret, passphrase, kemCiphertext []byte, label string, params KDFParams) ([]byte, error) {
	saltHash := sha256.Sum256(kemCiphertext)
	salt := saltHash[:]

	stretched := argon2.IDKey(passphrase, salt, params.Time, params.Memory, params.Threads, PassphraseKeySize)
	defer Zero(stretched)

	ikm := make([]byte, 0, len(sharedSecret)+len(stretched))
	ikm = append(ikm, sharedSecret...)
	ikm = append(ikm, stretched...)
	defer Zero(ikm)

	info := make([]byte, 0, len(HKDFContext)+1+len(label))
	info = append(info, HKDFContext...)
	info = append(info, ':')
	info = append(info, label...)

	return DeriveKey(ikm, salt, info, SymmetricKeySize)
}
