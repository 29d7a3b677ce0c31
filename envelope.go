package pqencrypt

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cryptguard/pqencrypt/internal/armor"
	"github.com/cryptguard/pqencrypt/internal/crypto"
	"github.com/cryptguard/pqencrypt/internal/fsutil"
	"github.com/cryptguard/pqencrypt/internal/logging"
)

// SymmetricFamily selects the AEAD used for the payload.
type SymmetricFamily uint8

const (
	// Standard is AES-256-GCM. Its nonce is generated internally and
	// travels inside the payload ciphertext.
	Standard SymmetricFamily = iota
	// Extended is XChaCha20-Poly1305. Its 24-byte nonce is returned to the
	// caller and must be supplied again to decrypt.
	Extended
)

// NonceSize is the size of an extended-family nonce.
const NonceSize = crypto.XNonceSize

// DefaultMessageName is the base name used by SaveSealed when no output
// path is given.
const DefaultMessageName = "message"

func (f SymmetricFamily) String() string {
	switch f {
	case Standard:
		return "standard"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("symmetric(%d)", uint8(f))
	}
}

// ParseSymmetricFamily accepts "standard"/"aes" and "extended"/"xchacha".
func ParseSymmetricFamily(s string) (SymmetricFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "aes", "aes-256-gcm":
		return Standard, nil
	case "extended", "xchacha", "xchacha20-poly1305":
		return Extended, nil
	}
	return 0, fmt.Errorf("%w: symmetric family %q", ErrUnsupportedAlgorithm, s)
}

// EncryptRequest describes one encryption. The recipient key is either
// PublicKey or loaded from PublicKeyPath.
type EncryptRequest struct {
	Algorithm     Algorithm
	PublicKeyPath string
	PublicKey     []byte
	Payload       Payload
	Passphrase    []byte
	Family        SymmetricFamily
}

// DecryptRequest describes one decryption. Key material is either given
// directly or loaded from the corresponding path.
type DecryptRequest struct {
	Algorithm      Algorithm
	SecretKeyPath  string
	SecretKey      []byte
	CiphertextPath string
	KEMCiphertext  []byte
	// Payload holds the encrypted payload: raw bytes as a message, or a
	// file holding an ENCRYPTED MESSAGE block or raw bytes.
	Payload    Payload
	Passphrase []byte
	Family     SymmetricFamily
	// Nonce is required for the extended family and ignored otherwise.
	Nonce []byte
}

// Sealed is the result of Encrypt.
type Sealed struct {
	Algorithm     Algorithm
	Family        SymmetricFamily
	Payload       []byte
	KEMCiphertext []byte
	// Nonce is set for the extended family only.
	Nonce []byte
}

// SealedFiles are the paths written by SaveSealed.
type SealedFiles struct {
	Payload    string
	Ciphertext string
}

// Envelope encrypts and decrypts payloads to KEM public keys, mixing the
// encapsulated secret with a passphrase.
type Envelope struct {
	keychain *Keychain
	cfg      config
}

// NewEnvelope returns an Envelope that loads key files through keychain.
func NewEnvelope(keychain *Keychain, opts ...Option) *Envelope {
	cfg := keychain.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Envelope{keychain: keychain, cfg: cfg}
}

// associatedData binds the algorithm, the symmetric family and the KEM
// ciphertext to the payload tag.
func associatedData(alg Algorithm, family SymmetricFamily, kemCiphertext []byte) []byte {
	header := crypto.HKDFContext + "|" + alg.String() + "|" + family.String() + "|"
	aad := make([]byte, 0, len(header)+len(kemCiphertext))
	aad = append(aad, header...)
	return append(aad, kemCiphertext...)
}

func stageErr(stage string, err error) error {
	return &EnvelopeError{Stage: stage, Err: err}
}

func (e *Envelope) deriveKey(sharedSecret, passphraseIn []byte, kemCiphertext []byte, alg Algorithm, family SymmetricFamily) (*crypto.Secret, error) {
	passphrase := crypto.NewSecret(append([]byte(nil), passphraseIn...))
	defer passphrase.Destroy()

	key, err := crypto.DeriveEnvelopeKey(sharedSecret, passphrase.Bytes(), kemCiphertext, alg.String()+":"+family.String(), e.cfg.kdf)
	if err != nil {
		return nil, err
	}
	return crypto.NewSecret(key), nil
}

// Encrypt runs ResolveRecipientPublicKey, Encapsulate, DeriveSymmetricKey,
// GenerateNonce (extended only) and AEAD encryption.
func (e *Envelope) Encrypt(ctx context.Context, req EncryptRequest) (*Sealed, error) {
	log := e.cfg.logger.With("op", "encrypt", "alg", req.Algorithm.String(), "family", req.Family.String())

	plaintext, err := req.Payload.Read()
	if err != nil {
		return nil, err
	}
	if req.Family != Standard && req.Family != Extended {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, req.Family)
	}

	kem, err := crypto.KEMFor(req.Algorithm)
	if err != nil {
		return nil, translate(err)
	}

	// ResolveRecipientPublicKey
	publicKey := req.PublicKey
	if publicKey == nil {
		if req.PublicKeyPath == "" {
			return nil, stageErr("resolve-key", fmt.Errorf("%w: recipient public key", ErrMissingInput))
		}
		publicKey, err = e.keychain.LoadPublicKey(req.PublicKeyPath, req.Algorithm)
		if err != nil {
			return nil, stageErr("resolve-key", err)
		}
	} else if err := checkWidth("", KindPublicKey, req.Algorithm, publicKey); err != nil {
		return nil, stageErr("resolve-key", err)
	}

	// Encapsulate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kemCiphertext, ss, err := kem.Encapsulate(publicKey)
	if err != nil {
		return nil, stageErr("encapsulate", translate(err))
	}
	sharedSecret := crypto.NewSecret(ss)
	defer sharedSecret.Destroy()

	// DeriveSymmetricKey
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := e.deriveKey(sharedSecret.Bytes(), req.Passphrase, kemCiphertext, req.Algorithm, req.Family)
	if err != nil {
		return nil, stageErr("derive-key", err)
	}
	defer key.Destroy()

	aad := associatedData(req.Algorithm, req.Family, kemCiphertext)
	sealed := &Sealed{Algorithm: req.Algorithm, Family: req.Family, KEMCiphertext: kemCiphertext}

	switch req.Family {
	case Extended:
		nonce, err := crypto.NewXNonce()
		if err != nil {
			return nil, stageErr("nonce", err)
		}
		sealed.Payload, err = crypto.SealX(key.Bytes(), nonce, plaintext, aad)
		if err != nil {
			return nil, stageErr("seal", err)
		}
		sealed.Nonce = nonce
	default:
		sealed.Payload, err = crypto.EncryptAES(key.Bytes(), plaintext, aad)
		if err != nil {
			return nil, stageErr("seal", err)
		}
	}

	log.Debug(ctx, "payload sealed", "plaintext_bytes", len(plaintext), logging.Redacted("passphrase"))
	return sealed, nil
}

// Decrypt runs LoadSecretKey, LoadKemCiphertext, Decapsulate,
// DeriveSymmetricKey, RequireCallerSuppliedNonce (extended only) and AEAD
// decryption. Every tag failure is reported as ErrAuthenticationFailed.
func (e *Envelope) Decrypt(ctx context.Context, req DecryptRequest) ([]byte, error) {
	log := e.cfg.logger.With("op", "decrypt", "alg", req.Algorithm.String(), "family", req.Family.String())

	payload, err := readEncryptedPayload(req.Payload)
	if err != nil {
		return nil, err
	}
	if req.Family != Standard && req.Family != Extended {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, req.Family)
	}

	kem, err := crypto.KEMFor(req.Algorithm)
	if err != nil {
		return nil, translate(err)
	}

	// LoadSecretKey
	secretKey := req.SecretKey
	if secretKey == nil {
		if req.SecretKeyPath == "" {
			return nil, stageErr("load-secret-key", fmt.Errorf("%w: secret key", ErrMissingInput))
		}
		secretKey, err = e.keychain.LoadSecretKey(req.SecretKeyPath, req.Algorithm)
		if err != nil {
			return nil, stageErr("load-secret-key", err)
		}
		defer crypto.Zero(secretKey)
	} else if err := checkWidth("", KindSecretKey, req.Algorithm, secretKey); err != nil {
		return nil, stageErr("load-secret-key", err)
	}

	// LoadKemCiphertext
	kemCiphertext := req.KEMCiphertext
	if kemCiphertext == nil {
		if req.CiphertextPath == "" {
			return nil, stageErr("load-ciphertext", fmt.Errorf("%w: KEM ciphertext", ErrMissingInput))
		}
		kemCiphertext, err = e.keychain.LoadCiphertext(req.CiphertextPath, req.Algorithm)
		if err != nil {
			return nil, stageErr("load-ciphertext", err)
		}
	} else if err := checkWidth("", KindCiphertext, req.Algorithm, kemCiphertext); err != nil {
		return nil, stageErr("load-ciphertext", err)
	}

	// Decapsulate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ss, err := kem.Decapsulate(secretKey, kemCiphertext)
	if err != nil {
		return nil, stageErr("decapsulate", translate(err))
	}
	sharedSecret := crypto.NewSecret(ss)
	defer sharedSecret.Destroy()

	// DeriveSymmetricKey
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := e.deriveKey(sharedSecret.Bytes(), req.Passphrase, kemCiphertext, req.Algorithm, req.Family)
	if err != nil {
		return nil, stageErr("derive-key", err)
	}
	defer key.Destroy()

	aad := associatedData(req.Algorithm, req.Family, kemCiphertext)

	var plaintext []byte
	switch req.Family {
	case Extended:
		// RequireCallerSuppliedNonce
		if req.Nonce == nil {
			return nil, stageErr("nonce", ErrMissingNonce)
		}
		if len(req.Nonce) != NonceSize {
			return nil, stageErr("nonce", fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceLength, len(req.Nonce), NonceSize))
		}
		plaintext, err = crypto.OpenX(key.Bytes(), req.Nonce, payload, aad)
	default:
		if req.Nonce != nil {
			log.Warn(ctx, "nonce ignored for the standard family")
		}
		plaintext, err = crypto.DecryptAES(key.Bytes(), payload, aad)
	}
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) || errors.Is(err, crypto.ErrCiphertextTooShort) {
			log.Debug(ctx, "authentication failed")
			return nil, stageErr("open", ErrAuthenticationFailed)
		}
		return nil, stageErr("open", err)
	}

	log.Debug(ctx, "payload opened", "plaintext_bytes", len(plaintext))
	return plaintext, nil
}

// readEncryptedPayload accepts raw ciphertext bytes, or a file that holds
// either an ENCRYPTED MESSAGE block or raw bytes.
func readEncryptedPayload(p Payload) ([]byte, error) {
	b, err := p.Read()
	if err != nil || p.File == "" {
		return b, err
	}
	if _, derr := armor.Detect(string(b)); derr != nil {
		return b, nil
	}
	out, err := armor.Decode(KindEncryptedMessage, string(b))
	if err != nil {
		return nil, &ArmorError{Path: p.File, Kind: KindEncryptedMessage, Err: err}
	}
	return out, nil
}

// ParseEncryptedMessage decodes an encrypted payload given as text: either
// an ENCRYPTED MESSAGE block or bare hex.
func ParseEncryptedMessage(text string) ([]byte, error) {
	if strings.Contains(text, "-----BEGIN ") {
		return Dearmor(KindEncryptedMessage, text)
	}
	b, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, &ArmorError{Kind: KindEncryptedMessage, Err: fmt.Errorf("%w: %v", armor.ErrEncoding, err)}
	}
	return b, nil
}

// SaveSealed writes the payload as an ENCRYPTED MESSAGE block and the KEM
// ciphertext through Keychain.SaveCiphertext under ciphertextBase. When
// outPath is empty the payload goes to message.enc (then message_2.enc, ...)
// in the keychain directory; an explicit outPath is replaced atomically.
func (e *Envelope) SaveSealed(ctx context.Context, sealed *Sealed, ciphertextBase, outPath string) (*SealedFiles, error) {
	body := []byte(armor.Encode(KindEncryptedMessage, sealed.Payload))
	files := &SealedFiles{}

	if outPath != "" {
		if err := fsutil.EnsureDir(filepath.Dir(outPath)); err != nil {
			return nil, &IOError{Op: "mkdir", Path: filepath.Dir(outPath), Err: err}
		}
		if err := fsutil.WriteFileAtomic(outPath, body, 0o644); err != nil {
			return nil, &IOError{Op: "write", Path: outPath, Err: err}
		}
		files.Payload = outPath
	} else {
		dir := e.keychain.Dir()
		if err := fsutil.EnsureDir(dir); err != nil {
			return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
		}
		path, err := fsutil.WriteFileUnique(dir, DefaultMessageName, ExtEncryptedMessage, body, 0o644)
		if err != nil {
			return nil, &IOError{Op: "write", Path: filepath.Join(dir, DefaultMessageName+ExtEncryptedMessage), Err: err}
		}
		files.Payload = path
	}

	ct, err := e.keychain.SaveCiphertext(ctx, ciphertextBase, sealed.KEMCiphertext)
	if err != nil {
		return nil, err
	}
	files.Ciphertext = ct
	return files, nil
}
