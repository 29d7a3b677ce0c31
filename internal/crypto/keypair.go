package crypto

import "fmt"

// Keypair is raw key material for one algorithm.
type Keypair struct {
	// Algorithm is the family and parameter set the keys belong to.
	Algorithm Algorithm
	// PublicKey is the encoded public key.
	PublicKey []byte
	// SecretKey is the encoded secret key.
	SecretKey []byte
}

// GenerateKeypair creates a new keypair for any supported algorithm.
func GenerateKeypair(alg Algorithm) (*Keypair, error) {
	var (
		pub, sec []byte
		err      error
	)

	switch {
	case alg.Family == FamilyKEM:
		k, kerr := KEMFor(alg)
		if kerr != nil {
			return nil, kerr
		}
		pub, sec, err = k.GenerateKeypair()
	case alg.Family.IsSignature():
		s, serr := SignatureSchemeFor(alg)
		if serr != nil {
			return nil, serr
		}
		pub, sec, err = s.GenerateKeypair()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, err
	}

	return &Keypair{Algorithm: alg, PublicKey: pub, SecretKey: sec}, nil
}

// kemPublicKeyOffset is where an ML-KEM secret key embeds its public key:
// after the k*384-byte decryption key.
func kemPublicKeyOffset(alg Algorithm) int {
	switch alg {
	case KEM512:
		return 768
	case KEM768:
		return 1152
	default:
		return 1536
	}
}

// DerivePublicKeyFromSecret extracts the public key from an ML-KEM secret key.
// Returns an error if the secret key has an invalid size.
func DerivePublicKeyFromSecret(alg Algorithm, secretKey []byte) ([]byte, error) {
	k, err := KEMFor(alg)
	if err != nil {
		return nil, err
	}
	if len(secretKey) != k.SecretKeySize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSecretKeySize, len(secretKey), k.SecretKeySize())
	}

	offset := kemPublicKeyOffset(alg)
	publicKey := make([]byte, k.PublicKeySize())
	copy(publicKey, secretKey[offset:offset+k.PublicKeySize()])
	return publicKey, nil
}
