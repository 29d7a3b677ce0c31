package pqencrypt

import (
	"errors"
	"fmt"

	"github.com/cryptguard/pqencrypt/internal/armor"
	"github.com/cryptguard/pqencrypt/internal/crypto"
)

// Algorithm is a (family, parameter set) pair such as kem-1024 or falcon-512.
type Algorithm = crypto.Algorithm

// Family identifies an asymmetric primitive family.
type Family = crypto.Family

const (
	FamilyKEM       = crypto.FamilyKEM
	FamilyFalcon    = crypto.FamilyFalcon
	FamilyDilithium = crypto.FamilyDilithium
)

// Supported algorithms.
var (
	KEM512     = crypto.KEM512
	KEM768     = crypto.KEM768
	KEM1024    = crypto.KEM1024
	Falcon512  = crypto.Falcon512
	Falcon1024 = crypto.Falcon1024
	Dilithium2 = crypto.Dilithium2
	Dilithium3 = crypto.Dilithium3
	Dilithium5 = crypto.Dilithium5
)

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	return append([]Algorithm(nil), crypto.Algorithms...)
}

// ParseAlgorithm parses names such as "kem-1024", "falcon-512" or "dilithium-3".
func ParseAlgorithm(name string) (Algorithm, error) {
	alg, err := crypto.ParseAlgorithm(name)
	if err != nil {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// ArtifactKind identifies what an armored file holds.
type ArtifactKind = armor.Kind

const (
	KindPublicKey        = armor.PublicKey
	KindSecretKey        = armor.SecretKey
	KindSharedSecret     = armor.SharedSecret
	KindCiphertext       = armor.Ciphertext
	KindEncryptedMessage = armor.EncryptedMessage
	KindSignature        = armor.Signature
	KindSignedMessage    = armor.SignedMessage
)

// Armor encodes b as an armored block of the given kind.
func Armor(kind ArtifactKind, b []byte) string {
	return armor.Encode(kind, b)
}

// Dearmor decodes the first block of the given kind from text.
func Dearmor(kind ArtifactKind, text string) ([]byte, error) {
	b, err := armor.Decode(kind, text)
	if err != nil {
		return nil, &ArmorError{Kind: kind, Err: err}
	}
	return b, nil
}

// roleOf maps fixed-width artifact kinds to their key role.
func roleOf(kind ArtifactKind) (crypto.Role, bool) {
	switch kind {
	case KindPublicKey:
		return crypto.RolePublicKey, true
	case KindSecretKey:
		return crypto.RoleSecretKey, true
	case KindCiphertext:
		return crypto.RoleCiphertext, true
	case KindSharedSecret:
		return crypto.RoleSharedSecret, true
	case KindSignature:
		return crypto.RoleSignature, true
	}
	return 0, false
}

// checkWidth enforces the fixed width of b for kind under alg. A width that
// identifies exactly one other algorithm is reported as a mismatch.
func checkWidth(path string, kind ArtifactKind, alg Algorithm, b []byte) error {
	if !alg.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	role, fixed := roleOf(kind)
	if !fixed {
		return nil
	}

	want, ok := crypto.ExpectedSize(alg, role)
	if !ok {
		return &AlgorithmMismatchError{Path: path, Kind: kind, Want: alg}
	}
	if len(b) == want {
		return nil
	}

	if others := crypto.IdentifyBySize(role, len(b)); len(others) == 1 {
		return &AlgorithmMismatchError{Path: path, Kind: kind, Want: alg, Got: others[0]}
	}
	return &KeyFormatError{Path: path, Kind: kind, Algorithm: alg, Got: len(b), Want: want}
}

// translate maps internal primitive errors onto the public taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, crypto.ErrUnsupportedAlgorithm):
		return fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, err)
	case errors.Is(err, crypto.ErrWrongFamily):
		return fmt.Errorf("%w: %v", ErrAlgorithmMismatch, err)
	case errors.Is(err, crypto.ErrInvalidPublicKeySize),
		errors.Is(err, crypto.ErrInvalidSecretKeySize),
		errors.Is(err, crypto.ErrInvalidCiphertextSize):
		return fmt.Errorf("%w: %v", ErrLengthMismatch, err)
	}
	return err
}
