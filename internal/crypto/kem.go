package crypto

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// KEM performs key encapsulation for one ML-KEM parameter set.
type KEM struct {
	alg    Algorithm
	scheme kem.Scheme
}

var kemTable = map[Algorithm]*KEM{
	KEM512:  {alg: KEM512, scheme: mlkem512.Scheme()},
	KEM768:  {alg: KEM768, scheme: mlkem768.Scheme()},
	KEM1024: {alg: KEM1024, scheme: mlkem1024.Scheme()},
}

// KEMFor returns the KEM capability for alg.
func KEMFor(alg Algorithm) (*KEM, error) {
	if alg.Family != FamilyKEM {
		return nil, fmt.Errorf("%w: %s is not a KEM", ErrWrongFamily, alg)
	}
	k, ok := kemTable[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	return k, nil
}

// Algorithm returns the parameter set this KEM implements.
func (k *KEM) Algorithm() Algorithm { return k.alg }

// PublicKeySize is the size of an encoded public key in bytes.
func (k *KEM) PublicKeySize() int { return k.scheme.PublicKeySize() }

// SecretKeySize is the size of an encoded secret key in bytes.
func (k *KEM) SecretKeySize() int { return k.scheme.PrivateKeySize() }

// CiphertextSize is the size of an encapsulation in bytes.
func (k *KEM) CiphertextSize() int { return k.scheme.CiphertextSize() }

// SharedSecretSize is the size of the shared secret in bytes.
func (k *KEM) SharedSecretSize() int { return k.scheme.SharedKeySize() }

// GenerateKeypair creates a new keypair from a fresh random seed.
func (k *KEM) GenerateKeypair() (publicKey, secretKey []byte, err error) {
	seed := make([]byte, k.scheme.SeedSize())
	defer Zero(seed)
	if _, err := io.ReadFull(reader(), seed); err != nil {
		return nil, nil, fmt.Errorf("read seed: %w", err)
	}

	pub, priv := k.scheme.DeriveKeyPair(seed)

	// MarshalBinary never fails for keys produced by DeriveKeyPair
	publicKey, _ = pub.MarshalBinary()
	secretKey, _ = priv.MarshalBinary()
	return publicKey, secretKey, nil
}

// Encapsulate produces a fresh shared secret and the ciphertext that carries
// it to the holder of the secret key.
func (k *KEM) Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	if len(publicKey) != k.PublicKeySize() {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(publicKey), k.PublicKeySize())
	}

	pub, err := k.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal public key: %w", err)
	}

	seed := make([]byte, k.scheme.EncapsulationSeedSize())
	defer Zero(seed)
	if _, err := io.ReadFull(reader(), seed); err != nil {
		return nil, nil, fmt.Errorf("read seed: %w", err)
	}

	ciphertext, sharedSecret, err = k.scheme.EncapsulateDeterministically(pub, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from ciphertext. ML-KEM uses
// implicit rejection: a tampered ciphertext yields an unrelated secret
// rather than an error.
func (k *KEM) Decapsulate(secretKey, ciphertext []byte) ([]byte, error) {
	if len(secretKey) != k.SecretKeySize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSecretKeySize, len(secretKey), k.SecretKeySize())
	}
	if len(ciphertext) != k.CiphertextSize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidCiphertextSize, len(ciphertext), k.CiphertextSize())
	}

	priv, err := k.scheme.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	sharedSecret, err := k.scheme.Decapsulate(priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}
	return sharedSecret, nil
}
