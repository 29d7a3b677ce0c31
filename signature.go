package pqencrypt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cryptguard/pqencrypt/internal/armor"
	"github.com/cryptguard/pqencrypt/internal/crypto"
	"github.com/cryptguard/pqencrypt/internal/fsutil"
)

// SignatureMode selects how a signature travels with its message.
type SignatureMode uint8

const (
	// Detached produces the signature bytes alone.
	Detached SignatureMode = iota
	// Attached produces the signature followed by the message.
	Attached
)

func (m SignatureMode) String() string {
	switch m {
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Kind returns the armor kind a signature in mode m is stored as.
func (m SignatureMode) Kind() ArtifactKind {
	if m == Attached {
		return KindSignedMessage
	}
	return KindSignature
}

// Signature is the output of Sign. For Attached, Bytes is the signature
// followed by the signed message.
type Signature struct {
	Algorithm Algorithm
	Mode      SignatureMode
	Bytes     []byte
}

// Signer signs and verifies with the Falcon and Dilithium families.
type Signer struct {
	keychain *Keychain
	cfg      config
}

// NewSigner returns a Signer that loads key files through keychain.
func NewSigner(keychain *Keychain, opts ...Option) *Signer {
	cfg := keychain.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Signer{keychain: keychain, cfg: cfg}
}

func signatureScheme(alg Algorithm) (crypto.SignatureScheme, error) {
	s, err := crypto.SignatureSchemeFor(alg)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// Sign signs payload with secretKey.
func (s *Signer) Sign(ctx context.Context, secretKey []byte, payload Payload, alg Algorithm, mode SignatureMode) (*Signature, error) {
	if mode != Detached && mode != Attached {
		return nil, fmt.Errorf("%w: signature %s", ErrUnsupportedAlgorithm, mode)
	}
	scheme, err := signatureScheme(alg)
	if err != nil {
		return nil, err
	}
	if err := checkWidth("", KindSecretKey, alg, secretKey); err != nil {
		return nil, err
	}

	msg, err := payload.Read()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig, err := scheme.Sign(secretKey, msg)
	if err != nil {
		s.cfg.logger.Error(ctx, "signing failed", "alg", alg.String(), "error", err)
		return nil, fmt.Errorf("sign %s: %w", alg, err)
	}

	out := &Signature{Algorithm: alg, Mode: mode, Bytes: sig}
	if mode == Attached {
		out.Bytes = make([]byte, 0, len(sig)+len(msg))
		out.Bytes = append(out.Bytes, sig...)
		out.Bytes = append(out.Bytes, msg...)
	}
	s.cfg.logger.Debug(ctx, "signed", "alg", alg.String(), "mode", mode.String(), "message_bytes", len(msg))
	return out, nil
}

// SignFile loads the secret key at keyPath and signs payload.
func (s *Signer) SignFile(ctx context.Context, keyPath string, payload Payload, alg Algorithm, mode SignatureMode) (*Signature, error) {
	sk, err := s.keychain.LoadSecretKey(keyPath, alg)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(sk)
	return s.Sign(ctx, sk, payload, alg, mode)
}

// checkPublicKey reports a key whose width names another algorithm as a
// mismatch and collapses every other malformed key into ErrVerifyFailed.
func checkPublicKey(alg Algorithm, publicKey []byte) error {
	err := checkWidth("", KindPublicKey, alg, publicKey)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlgorithmMismatch) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
}

// VerifyDetached checks sig over msg.
func (s *Signer) VerifyDetached(ctx context.Context, publicKey, sig, msg []byte, alg Algorithm) error {
	scheme, err := signatureScheme(alg)
	if err != nil {
		return err
	}
	if err := checkPublicKey(alg, publicKey); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(sig) != scheme.SignatureSize() || !scheme.Verify(publicKey, msg, sig) {
		s.cfg.logger.Debug(ctx, "signature rejected", "alg", alg.String(), "mode", Detached.String())
		return ErrVerifyFailed
	}
	return nil
}

// VerifyAttached checks a signed message and returns the message it
// carries.
func (s *Signer) VerifyAttached(ctx context.Context, publicKey, signed []byte, alg Algorithm) ([]byte, error) {
	scheme, err := signatureScheme(alg)
	if err != nil {
		return nil, err
	}
	if err := checkPublicKey(alg, publicKey); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := scheme.SignatureSize()
	if len(signed) < n {
		return nil, ErrVerifyFailed
	}
	sig, msg := signed[:n], signed[n:]
	if !scheme.Verify(publicKey, msg, sig) {
		s.cfg.logger.Debug(ctx, "signature rejected", "alg", alg.String(), "mode", Attached.String())
		return nil, ErrVerifyFailed
	}
	return append([]byte(nil), msg...), nil
}

// SaveSignature writes sig to path as a SIGNATURE or SIGNED MESSAGE block.
func (s *Signer) SaveSignature(ctx context.Context, sig *Signature, path string) error {
	if err := fsutil.WriteFileAtomic(path, []byte(armor.Encode(sig.Mode.Kind(), sig.Bytes)), 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	s.cfg.logger.Info(ctx, "signature saved", "path", path, "mode", sig.Mode.String())
	return nil
}

// LoadSignature reads a signature file written by SaveSignature. The mode
// is taken from the armor label.
func (s *Signer) LoadSignature(path string, alg Algorithm) (*Signature, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	kind, err := armor.Detect(string(text))
	if err != nil {
		return nil, &ArmorError{Path: path, Kind: KindSignature, Err: err}
	}
	mode := Detached
	switch kind {
	case KindSignature:
	case KindSignedMessage:
		mode = Attached
	default:
		return nil, &ArmorError{Path: path, Kind: KindSignature, Err: fmt.Errorf("%w: found %s", armor.ErrFormat, kind)}
	}

	b, err := armor.Decode(kind, string(text))
	if err != nil {
		return nil, &ArmorError{Path: path, Kind: kind, Err: err}
	}
	return &Signature{Algorithm: alg, Mode: mode, Bytes: b}, nil
}
