// Package crypto provides the cryptographic primitives behind pqencrypt.
// Every asymmetric operation is looked up in a closed capability table keyed
// by [Algorithm] (family and parameter set), so callers never branch on
// algorithm names.
//
// # Algorithm Suite
//
//   - ML-KEM-512/768/1024 (NIST FIPS 203): key encapsulation, exposed as
//     kem-512, kem-768 and kem-1024.
//
//   - FN-DSA (Falcon) degree 512 and 1024: compact lattice signatures,
//     exposed as falcon-512 and falcon-1024.
//
//   - ML-DSA-44/65/87 (NIST FIPS 204): lattice signatures at security
//     levels 2, 3 and 5, exposed as dilithium-2, dilithium-3 and dilithium-5.
//
//   - AES-256-GCM: the standard envelope AEAD. Its 12-byte nonce is random,
//     generated internally and prefixed to the ciphertext.
//
//   - XChaCha20-Poly1305: the extended envelope AEAD. Its 24-byte nonce is
//     returned to the caller and must be supplied again to decrypt.
//
//   - Argon2id + HKDF-SHA-512: derive the AEAD key from the KEM shared
//     secret and the passphrase. See [DeriveEnvelopeKey].
//
// # Randomness
//
// Keys, encapsulation seeds and nonces come from crypto/rand. Tests may
// replace the source with [SetRandReaderForTesting].
//
// # Secret Handling
//
// [Secret] wraps sensitive buffers; [Secret.Destroy] zeroes them and, on
// linux and darwin, releases the mlock taken at construction. Zeroing is
// defense in depth; correctness never depends on it.
package crypto
