package pqencrypt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cryptguard/pqencrypt/internal/armor"
	"github.com/cryptguard/pqencrypt/internal/crypto"
	"github.com/cryptguard/pqencrypt/internal/fsutil"
)

// File extensions used for persisted artifacts.
const (
	ExtPublicKey        = ".pub"
	ExtSecretKey        = ".sec"
	ExtSharedSecret     = ".ss"
	ExtCiphertext       = ".ct"
	ExtEncryptedMessage = ".enc"
	ExtSignature        = ".sig"
)

// KeyPair is a generated keypair. It is not modified after generation.
type KeyPair struct {
	Algorithm Algorithm
	PublicKey []byte
	SecretKey []byte
}

// Destroy zeroes the secret key.
func (kp *KeyPair) Destroy() {
	if kp != nil {
		crypto.Zero(kp.SecretKey)
	}
}

// Encapsulation is a shared secret together with the KEM ciphertext that
// carries it.
type Encapsulation struct {
	SharedSecret []byte
	Ciphertext   []byte
}

// Destroy zeroes the shared secret.
func (e *Encapsulation) Destroy() {
	if e != nil {
		crypto.Zero(e.SharedSecret)
	}
}

// KeyFiles are the paths written by Persist. Optional entries are empty
// when not written.
type KeyFiles struct {
	PublicKey    string
	SecretKey    string
	SharedSecret string
	Ciphertext   string
}

// StoredFile is an entry returned by List.
type StoredFile struct {
	Path string
	// Kind is the detected artifact kind, zero if the file is not armored.
	Kind ArtifactKind
}

// Keychain generates keypairs and persists and loads armored artifacts.
// Relative base names are placed in its directory; paths given to the Load
// methods are used as is.
type Keychain struct {
	dir string
	cfg config
}

// NewKeychain returns a Keychain storing artifacts in dir. The directory is
// created on first write.
func NewKeychain(dir string, opts ...Option) *Keychain {
	return &Keychain{dir: dir, cfg: newConfig(opts)}
}

// Dir returns the storage directory.
func (k *Keychain) Dir() string { return k.dir }

// Generate creates a keypair for alg. Primitive failures point at a broken
// environment (no randomness) and are not retried.
func (k *Keychain) Generate(ctx context.Context, alg Algorithm) (*KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}

	raw, err := crypto.GenerateKeypair(alg)
	if err != nil {
		k.cfg.logger.Error(ctx, "keypair generation failed", "alg", alg.String(), "error", err)
		return nil, fmt.Errorf("generate %s: %w", alg, translate(err))
	}

	k.cfg.logger.Debug(ctx, "generated keypair", "alg", alg.String(), "public_key_bytes", len(raw.PublicKey))
	return &KeyPair{Algorithm: alg, PublicKey: raw.PublicKey, SecretKey: raw.SecretKey}, nil
}

// GenerateWithDemo creates a KEM keypair and encapsulates once against its
// own public key, giving the operator a shared secret and ciphertext to
// check the keypair with.
func (k *Keychain) GenerateWithDemo(ctx context.Context, alg Algorithm) (*KeyPair, *Encapsulation, error) {
	kem, err := crypto.KEMFor(alg)
	if err != nil {
		return nil, nil, translate(err)
	}

	kp, err := k.Generate(ctx, alg)
	if err != nil {
		return nil, nil, err
	}

	ct, ss, err := kem.Encapsulate(kp.PublicKey)
	if err != nil {
		kp.Destroy()
		return nil, nil, fmt.Errorf("encapsulate %s: %w", alg, translate(err))
	}
	return kp, &Encapsulation{SharedSecret: ss, Ciphertext: ct}, nil
}

func (k *Keychain) path(base, ext string) string {
	if filepath.IsAbs(base) {
		return base + ext
	}
	return filepath.Join(k.dir, base+ext)
}

func (k *Keychain) write(path string, kind ArtifactKind, b []byte, perm fs.FileMode) error {
	if err := fsutil.WriteFileAtomic(path, []byte(armor.Encode(kind, b)), perm); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Persist writes <base>.pub and <base>.sec and, when demo is non-nil,
// <base>.ss and a ciphertext allocated by SaveCiphertext. Existing key
// files with the same base are replaced atomically.
func (k *Keychain) Persist(ctx context.Context, kp *KeyPair, base string, demo *Encapsulation) (*KeyFiles, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: empty base name", ErrMissingInput)
	}
	dir := filepath.Dir(k.path(base, ""))
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	files := &KeyFiles{
		PublicKey: k.path(base, ExtPublicKey),
		SecretKey: k.path(base, ExtSecretKey),
	}
	if err := k.write(files.PublicKey, KindPublicKey, kp.PublicKey, 0o644); err != nil {
		return nil, err
	}
	if err := k.write(files.SecretKey, KindSecretKey, kp.SecretKey, 0o600); err != nil {
		return nil, err
	}

	if demo != nil {
		files.SharedSecret = k.path(base, ExtSharedSecret)
		if err := k.write(files.SharedSecret, KindSharedSecret, demo.SharedSecret, 0o600); err != nil {
			return nil, err
		}
		ct, err := k.SaveCiphertext(ctx, base, demo.Ciphertext)
		if err != nil {
			return nil, err
		}
		files.Ciphertext = ct
	}

	k.cfg.logger.Info(ctx, "keychain saved", "alg", kp.Algorithm.String(), "public_key", files.PublicKey)
	return files, nil
}

// SaveCiphertext stores a KEM ciphertext under the first free name of
// <base>.ct, <base>_2.ct, <base>_3.ct, ... and returns the path. An
// existing ciphertext is never overwritten.
func (k *Keychain) SaveCiphertext(ctx context.Context, base string, ct []byte) (string, error) {
	full := k.path(base, "")
	dir := filepath.Dir(full)
	if err := fsutil.EnsureDir(dir); err != nil {
		return "", &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	path, err := fsutil.WriteFileUnique(dir, filepath.Base(full), ExtCiphertext, []byte(armor.Encode(KindCiphertext, ct)), 0o644)
	if err != nil {
		return "", &IOError{Op: "write", Path: full + ExtCiphertext, Err: err}
	}
	k.cfg.logger.Debug(ctx, "ciphertext saved", "path", path)
	return path, nil
}

// Load reads an armored artifact of the given kind from path and checks its
// width against alg.
func (k *Keychain) Load(path string, kind ArtifactKind, alg Algorithm) ([]byte, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	b, err := armor.Decode(kind, string(text))
	if err != nil {
		return nil, &ArmorError{Path: path, Kind: kind, Err: err}
	}

	if err := checkWidth(path, kind, alg, b); err != nil {
		crypto.Zero(b)
		return nil, err
	}
	return b, nil
}

// LoadPublicKey loads a public key for alg.
func (k *Keychain) LoadPublicKey(path string, alg Algorithm) ([]byte, error) {
	return k.Load(path, KindPublicKey, alg)
}

// LoadSecretKey loads a secret key for alg. Files written with the legacy
// "PRIVATE KEY" label are accepted.
func (k *Keychain) LoadSecretKey(path string, alg Algorithm) ([]byte, error) {
	return k.Load(path, KindSecretKey, alg)
}

// LoadCiphertext loads a KEM ciphertext for alg.
func (k *Keychain) LoadCiphertext(path string, alg Algorithm) ([]byte, error) {
	return k.Load(path, KindCiphertext, alg)
}

// LoadSharedSecret loads a demonstration shared secret for alg.
func (k *Keychain) LoadSharedSecret(path string, alg Algorithm) ([]byte, error) {
	return k.Load(path, KindSharedSecret, alg)
}

// LoadKeyPair loads <base>.pub and <base>.sec. For KEM keys the public
// key must match the one embedded in the secret key.
func (k *Keychain) LoadKeyPair(base string, alg Algorithm) (*KeyPair, error) {
	pub, err := k.LoadPublicKey(k.path(base, ExtPublicKey), alg)
	if err != nil {
		return nil, err
	}
	secPath := k.path(base, ExtSecretKey)
	sec, err := k.LoadSecretKey(secPath, alg)
	if err != nil {
		return nil, err
	}

	// An ML-KEM secret key embeds its public key.
	if alg.Family == FamilyKEM {
		embedded, err := crypto.DerivePublicKeyFromSecret(alg, sec)
		if err != nil {
			crypto.Zero(sec)
			return nil, translate(err)
		}
		if !bytes.Equal(embedded, pub) {
			crypto.Zero(sec)
			return nil, fmt.Errorf("%w: %s does not belong to %s", ErrKeyFormat, secPath, k.path(base, ExtPublicKey))
		}
	}
	return &KeyPair{Algorithm: alg, PublicKey: pub, SecretKey: sec}, nil
}

// List returns the regular files in the storage directory sorted by name,
// with the kind of the armored block each holds. A missing directory
// yields an empty list.
func (k *Keychain) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "list", Path: k.dir, Err: err}
	}

	var files []StoredFile
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(k.dir, e.Name())
		f := StoredFile{Path: path}
		if text, err := os.ReadFile(path); err == nil {
			if kind, err := armor.Detect(string(text)); err == nil {
				f.Kind = kind
			}
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Show writes a hex dump of a keypair and, for a demonstration
// encapsulation, both the encapsulated and the decapsulated shared secret.
// It prints secret material and exists for debugging only.
func (k *Keychain) Show(w io.Writer, kp *KeyPair, demo *Encapsulation) error {
	fmt.Fprintf(w, "Algorithm: %s\n\n", kp.Algorithm)
	fmt.Fprintf(w, "Public Key: %x\n\n", kp.PublicKey)
	fmt.Fprintf(w, "Secret Key: %x\n", kp.SecretKey)

	if demo == nil {
		return nil
	}

	kem, err := crypto.KEMFor(kp.Algorithm)
	if err != nil {
		return translate(err)
	}
	ss, err := kem.Decapsulate(kp.SecretKey, demo.Ciphertext)
	if err != nil {
		return translate(err)
	}
	defer crypto.Zero(ss)

	fmt.Fprintf(w, "\nCiphertext: %x\n\n", demo.Ciphertext)
	fmt.Fprintf(w, "Shared secret: %x\n\n", demo.SharedSecret)
	_, err = fmt.Fprintf(w, "Decapsulated shared secret: %x\n", ss)
	return err
}
