//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/cryptguard/pqencrypt"
)

var home string

func TestMain(m *testing.M) {
	// Load .env file if it exists (won't error if missing)
	if err := godotenv.Load("../.env"); err != nil {
		os.Stderr.WriteString("Note: .env file not found at project root\n")
	}

	home = os.Getenv("PQENCRYPT_HOME")
	if home == "" {
		os.Stderr.WriteString("Skipping integration tests: PQENCRYPT_HOME not set\n")
		os.Exit(0)
	}

	os.Stderr.WriteString("Running integration tests...\n")
	os.Stderr.WriteString("Key directory: " + home + "\n")

	os.Exit(m.Run())
}

// newKeychain returns a keychain in a fresh subdirectory of home using the
// default KDF cost.
func newKeychain(t *testing.T) *pqencrypt.Keychain {
	t.Helper()

	dir, err := os.MkdirTemp(home, "it-")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return pqencrypt.NewKeychain(dir)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)
	return ctx
}

func TestIntegration_EnvelopeFiles(t *testing.T) {
	for _, alg := range []pqencrypt.Algorithm{pqencrypt.KEM512, pqencrypt.KEM768, pqencrypt.KEM1024} {
		for _, family := range []pqencrypt.SymmetricFamily{pqencrypt.Standard, pqencrypt.Extended} {
			t.Run(alg.String()+"/"+family.String(), func(t *testing.T) {
				ctx := testContext(t)
				kc := newKeychain(t)
				env := pqencrypt.NewEnvelope(kc)

				kp, err := kc.Generate(ctx, alg)
				if err != nil {
					t.Fatalf("Generate() error = %v", err)
				}
				keys, err := kc.Persist(ctx, kp, "recipient", nil)
				if err != nil {
					t.Fatalf("Persist() error = %v", err)
				}

				sealed, err := env.Encrypt(ctx, pqencrypt.EncryptRequest{
					Algorithm:     alg,
					PublicKeyPath: keys.PublicKey,
					Payload:       pqencrypt.MessagePayload([]byte("integration payload")),
					Passphrase:    []byte("integration passphrase"),
					Family:        family,
				})
				if err != nil {
					t.Fatalf("Encrypt() error = %v", err)
				}
				files, err := env.SaveSealed(ctx, sealed, "recipient", "")
				if err != nil {
					t.Fatalf("SaveSealed() error = %v", err)
				}

				req := pqencrypt.DecryptRequest{
					Algorithm:      alg,
					SecretKeyPath:  keys.SecretKey,
					CiphertextPath: files.Ciphertext,
					Payload:        pqencrypt.FilePayload(files.Payload),
					Passphrase:     []byte("integration passphrase"),
					Family:         family,
					Nonce:          sealed.Nonce,
				}
				plaintext, err := env.Decrypt(ctx, req)
				if err != nil {
					t.Fatalf("Decrypt() error = %v", err)
				}
				if string(plaintext) != "integration payload" {
					t.Errorf("Decrypt() = %q, want %q", plaintext, "integration payload")
				}

				req.Passphrase = []byte("wrong")
				if _, err := env.Decrypt(ctx, req); !errors.Is(err, pqencrypt.ErrAuthenticationFailed) {
					t.Errorf("Decrypt() with wrong passphrase error = %v, want ErrAuthenticationFailed", err)
				}
			})
		}
	}
}

func TestIntegration_SignatureFiles(t *testing.T) {
	algs := []pqencrypt.Algorithm{
		pqencrypt.Falcon512, pqencrypt.Falcon1024,
		pqencrypt.Dilithium2, pqencrypt.Dilithium3, pqencrypt.Dilithium5,
	}
	for _, alg := range algs {
		t.Run(alg.String(), func(t *testing.T) {
			ctx := testContext(t)
			kc := newKeychain(t)
			signer := pqencrypt.NewSigner(kc)

			kp, err := kc.Generate(ctx, alg)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			keys, err := kc.Persist(ctx, kp, "signer", nil)
			if err != nil {
				t.Fatalf("Persist() error = %v", err)
			}

			sig, err := signer.SignFile(ctx, keys.SecretKey, pqencrypt.MessagePayload([]byte("document")), alg, pqencrypt.Attached)
			if err != nil {
				t.Fatalf("SignFile() error = %v", err)
			}
			path := filepath.Join(kc.Dir(), "document"+pqencrypt.ExtSignature)
			if err := signer.SaveSignature(ctx, sig, path); err != nil {
				t.Fatalf("SaveSignature() error = %v", err)
			}

			pub, err := kc.LoadPublicKey(keys.PublicKey, alg)
			if err != nil {
				t.Fatalf("LoadPublicKey() error = %v", err)
			}
			loaded, err := signer.LoadSignature(path, alg)
			if err != nil {
				t.Fatalf("LoadSignature() error = %v", err)
			}
			msg, err := signer.VerifyAttached(ctx, pub, loaded.Bytes, alg)
			if err != nil {
				t.Fatalf("VerifyAttached() error = %v", err)
			}
			if string(msg) != "document" {
				t.Errorf("VerifyAttached() = %q, want document", msg)
			}
		})
	}
}

func TestIntegration_ConcurrentCiphertextNames(t *testing.T) {
	ctx := testContext(t)
	kc := newKeychain(t)

	_, demo, err := kc.GenerateWithDemo(ctx, pqencrypt.KEM512)
	if err != nil {
		t.Fatalf("GenerateWithDemo() error = %v", err)
	}

	const writers = 16
	paths := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := kc.SaveCiphertext(ctx, "shared", demo.Ciphertext)
			if err != nil {
				t.Errorf("SaveCiphertext() error = %v", err)
				return
			}
			paths <- p
		}()
	}
	wg.Wait()
	close(paths)

	seen := map[string]bool{}
	for p := range paths {
		if seen[p] {
			t.Errorf("path %s allocated twice", p)
		}
		seen[p] = true
	}
	for i := 1; i <= writers; i++ {
		name := "shared.ct"
		if i > 1 {
			name = fmt.Sprintf("shared_%d.ct", i)
		}
		if !seen[filepath.Join(kc.Dir(), name)] {
			t.Errorf("missing %s", name)
		}
	}
}
