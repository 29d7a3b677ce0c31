package pqencrypt

import (
	"errors"
	"fmt"

	"github.com/cryptguard/pqencrypt/internal/armor"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrIO is returned when a path cannot be read or written.
	ErrIO = errors.New("i/o error")

	// ErrFormat is returned when an armored artifact has a missing or
	// malformed BEGIN/END label.
	ErrFormat = errors.New("malformed armor")

	// ErrEncoding is returned when an armor body or a hex nonce is not
	// valid hex.
	ErrEncoding = errors.New("malformed hex encoding")

	// ErrLengthMismatch is returned when decoded bytes do not have the fixed
	// width of the declared parameter set.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrKeyFormat is returned alongside ErrLengthMismatch for key material.
	ErrKeyFormat = errors.New("invalid key format")

	// ErrAlgorithmMismatch is returned when key material belongs to a
	// different family or parameter set than the requested operation.
	ErrAlgorithmMismatch = errors.New("algorithm mismatch")

	// ErrUnsupportedAlgorithm is returned for an unknown family or parameter set.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrMissingNonce is returned when extended-family decryption is
	// attempted without the nonce returned at encryption time.
	ErrMissingNonce = errors.New("nonce is required for the extended family")

	// ErrInvalidNonceLength is returned when a supplied nonce is not 24 bytes.
	ErrInvalidNonceLength = errors.New("invalid nonce length")

	// ErrAuthenticationFailed is returned for every AEAD tag failure. It
	// never reveals whether the key, passphrase or ciphertext was wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrVerifyFailed is returned when a signature does not verify.
	ErrVerifyFailed = errors.New("signature verification failed")

	// ErrMutuallyExclusiveInputs is returned when both a message and a file
	// are supplied as payload.
	ErrMutuallyExclusiveInputs = errors.New("message and file are mutually exclusive")

	// ErrMissingInput is returned when neither a message nor a file is supplied.
	ErrMissingInput = errors.New("a message or a file is required")
)

// PQEncryptError is implemented by all typed errors of this package.
type PQEncryptError interface {
	error
	PQEncryptError() // marker method
}

// IOError reports a failed file operation with its path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// PQEncryptError implements the PQEncryptError interface.
func (e *IOError) PQEncryptError() {}

// ArmorError reports an artifact whose armor could not be parsed.
type ArmorError struct {
	Path string
	Kind ArtifactKind
	Err  error
}

func (e *ArmorError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("read %s from %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ArmorError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ArmorError) Is(target error) bool {
	switch target {
	case ErrFormat:
		return errors.Is(e.Err, armor.ErrFormat)
	case ErrEncoding:
		return errors.Is(e.Err, armor.ErrEncoding)
	}
	return false
}

// PQEncryptError implements the PQEncryptError interface.
func (e *ArmorError) PQEncryptError() {}

// KeyFormatError reports decoded material whose length does not match the
// declared algorithm.
type KeyFormatError struct {
	Path      string
	Kind      ArtifactKind
	Algorithm Algorithm
	Got       int
	Want      int
}

func (e *KeyFormatError) Error() string {
	msg := fmt.Sprintf("%s for %s is %d bytes, want %d", e.Kind, e.Algorithm, e.Got, e.Want)
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyFormatError) Is(target error) bool {
	return target == ErrKeyFormat || target == ErrLengthMismatch
}

// PQEncryptError implements the PQEncryptError interface.
func (e *KeyFormatError) PQEncryptError() {}

// AlgorithmMismatchError reports material that was recognised as belonging
// to another algorithm. Got is the zero Algorithm when the requested
// algorithm has no such artifact at all (a signature key has no ciphertext).
type AlgorithmMismatchError struct {
	Path string
	Kind ArtifactKind
	Want Algorithm
	Got  Algorithm
}

func (e *AlgorithmMismatchError) Error() string {
	var msg string
	if e.Got.Valid() {
		msg = fmt.Sprintf("%s belongs to %s, not %s", e.Kind, e.Got, e.Want)
	} else {
		msg = fmt.Sprintf("%s is not used by %s", e.Kind, e.Want)
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

// Is implements errors.Is for sentinel error matching.
func (e *AlgorithmMismatchError) Is(target error) bool {
	return target == ErrAlgorithmMismatch
}

// PQEncryptError implements the PQEncryptError interface.
func (e *AlgorithmMismatchError) PQEncryptError() {}

// EnvelopeError records the stage of the encrypt or decrypt workflow that
// failed. Authentication failures always report the "open" stage.
type EnvelopeError struct {
	Stage string
	Err   error
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("envelope %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// PQEncryptError implements the PQEncryptError interface.
func (e *EnvelopeError) PQEncryptError() {}
