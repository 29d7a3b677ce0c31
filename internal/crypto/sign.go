package crypto

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"github.com/pornin/go-fn-dsa/fndsa"
)

// SignatureScheme signs and verifies for one (family, parameter set).
// Signatures of every supported scheme have a fixed encoded size.
type SignatureScheme interface {
	Algorithm() Algorithm
	PublicKeySize() int
	SecretKeySize() int
	SignatureSize() int
	GenerateKeypair() (publicKey, secretKey []byte, err error)
	Sign(secretKey, message []byte) ([]byte, error)
	// Verify reports whether signature is valid for message under publicKey.
	// Malformed inputs report false.
	Verify(publicKey, message, signature []byte) bool
}

var signatureTable = map[Algorithm]SignatureScheme{
	Falcon512:  newFalconScheme(Falcon512, 9),
	Falcon1024: newFalconScheme(Falcon1024, 10),
	Dilithium2: &mldsaScheme{alg: Dilithium2, scheme: mldsa44.Scheme()},
	Dilithium3: &mldsaScheme{alg: Dilithium3, scheme: mldsa65.Scheme()},
	Dilithium5: &mldsaScheme{alg: Dilithium5, scheme: mldsa87.Scheme()},
}

// SignatureSchemeFor returns the signature capability for alg.
func SignatureSchemeFor(alg Algorithm) (SignatureScheme, error) {
	if !alg.Family.IsSignature() {
		return nil, fmt.Errorf("%w: %s is not a signature algorithm", ErrWrongFamily, alg)
	}
	s, ok := signatureTable[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	return s, nil
}

// mldsaScheme adapts a circl ML-DSA scheme. Levels 2, 3 and 5 map to
// ML-DSA-44, ML-DSA-65 and ML-DSA-87.
type mldsaScheme struct {
	alg    Algorithm
	scheme sign.Scheme
}

func (m *mldsaScheme) Algorithm() Algorithm { return m.alg }
func (m *mldsaScheme) PublicKeySize() int   { return m.scheme.PublicKeySize() }
func (m *mldsaScheme) SecretKeySize() int   { return m.scheme.PrivateKeySize() }
func (m *mldsaScheme) SignatureSize() int   { return m.scheme.SignatureSize() }

func (m *mldsaScheme) GenerateKeypair() ([]byte, []byte, error) {
	seed := make([]byte, m.scheme.SeedSize())
	defer Zero(seed)
	if _, err := io.ReadFull(reader(), seed); err != nil {
		return nil, nil, fmt.Errorf("read seed: %w", err)
	}

	pub, priv := m.scheme.DeriveKey(seed)

	// MarshalBinary never fails for keys produced by DeriveKey
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()
	return pubBytes, privBytes, nil
}

func (m *mldsaScheme) Sign(secretKey, message []byte) ([]byte, error) {
	if len(secretKey) != m.SecretKeySize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSecretKeySize, len(secretKey), m.SecretKeySize())
	}
	priv, err := m.scheme.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}
	return m.scheme.Sign(priv, message, nil), nil
}

func (m *mldsaScheme) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != m.PublicKeySize() || len(signature) != m.SignatureSize() {
		return false
	}
	pub, err := m.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false
	}
	return m.scheme.Verify(pub, message, signature, nil)
}

// falconScheme adapts FN-DSA at degree 2^logn. Messages are signed raw
// (no pre-hash) with an empty domain context.
type falconScheme struct {
	alg     Algorithm
	logn    uint
	pkSize  int
	skSize  int
	sigSize int
}

// newFalconScheme takes the fixed encoded sizes at degree 2^logn from the
// library.
func newFalconScheme(alg Algorithm, logn uint) *falconScheme {
	return &falconScheme{
		alg:     alg,
		logn:    logn,
		pkSize:  fndsa.VerifyingKeySize(logn),
		skSize:  fndsa.SigningKeySize(logn),
		sigSize: fndsa.SignatureSize(logn),
	}
}

func (f *falconScheme) Algorithm() Algorithm { return f.alg }
func (f *falconScheme) PublicKeySize() int   { return f.pkSize }
func (f *falconScheme) SecretKeySize() int   { return f.skSize }
func (f *falconScheme) SignatureSize() int   { return f.sigSize }

func (f *falconScheme) GenerateKeypair() ([]byte, []byte, error) {
	skey, vkey, err := fndsa.KeyGen(f.logn, reader())
	if err != nil {
		return nil, nil, fmt.Errorf("fn-dsa keygen: %w", err)
	}
	return vkey, skey, nil
}

func (f *falconScheme) Sign(secretKey, message []byte) ([]byte, error) {
	if len(secretKey) != f.skSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSecretKeySize, len(secretKey), f.skSize)
	}
	sig, err := fndsa.Sign(reader(), secretKey, fndsa.DOMAIN_NONE, 0, message)
	if err != nil {
		return nil, fmt.Errorf("fn-dsa sign: %w", err)
	}
	return sig, nil
}

func (f *falconScheme) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != f.pkSize || len(signature) != f.sigSize {
		return false
	}
	return fndsa.Verify(publicKey, fndsa.DOMAIN_NONE, 0, message, signature)
}
