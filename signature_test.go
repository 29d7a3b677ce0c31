package pqencrypt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signatureAlgorithms = []Algorithm{Falcon512, Falcon1024, Dilithium2, Dilithium3, Dilithium5}

func TestSigner_RoundTrip(t *testing.T) {
	ctx := context.Background()
	msg := []byte("release v1.2.3")

	for _, alg := range signatureAlgorithms {
		t.Run(alg.String(), func(t *testing.T) {
			kc := newTestKeychain(t)
			signer := NewSigner(kc)

			kp, err := kc.Generate(ctx, alg)
			require.NoError(t, err)
			other, err := kc.Generate(ctx, alg)
			require.NoError(t, err)

			detached, err := signer.Sign(ctx, kp.SecretKey, MessagePayload(msg), alg, Detached)
			require.NoError(t, err)
			assert.Equal(t, Detached, detached.Mode)
			require.NoError(t, signer.VerifyDetached(ctx, kp.PublicKey, detached.Bytes, msg, alg))

			attached, err := signer.Sign(ctx, kp.SecretKey, MessagePayload(msg), alg, Attached)
			require.NoError(t, err)
			assert.Len(t, attached.Bytes, len(detached.Bytes)+len(msg))
			got, err := signer.VerifyAttached(ctx, kp.PublicKey, attached.Bytes, alg)
			require.NoError(t, err)
			assert.Equal(t, msg, got)

			// Key substitution.
			assert.ErrorIs(t, signer.VerifyDetached(ctx, other.PublicKey, detached.Bytes, msg, alg), ErrVerifyFailed)
			_, err = signer.VerifyAttached(ctx, other.PublicKey, attached.Bytes, alg)
			assert.ErrorIs(t, err, ErrVerifyFailed)

			// Payload mutation.
			mutated := append([]byte(nil), msg...)
			mutated[0] ^= 0x01
			assert.ErrorIs(t, signer.VerifyDetached(ctx, kp.PublicKey, detached.Bytes, mutated, alg), ErrVerifyFailed)

			tampered := append([]byte(nil), attached.Bytes...)
			tampered[len(tampered)-1] ^= 0x01
			_, err = signer.VerifyAttached(ctx, kp.PublicKey, tampered, alg)
			assert.ErrorIs(t, err, ErrVerifyFailed)
		})
	}
}

func TestSigner_VerifyErrors(t *testing.T) {
	ctx := context.Background()
	kc := newTestKeychain(t)
	signer := NewSigner(kc)

	falcon, err := kc.Generate(ctx, Falcon512)
	require.NoError(t, err)
	sig, err := signer.Sign(ctx, falcon.SecretKey, MessagePayload([]byte("m")), Falcon512, Detached)
	require.NoError(t, err)

	t.Run("key of another algorithm", func(t *testing.T) {
		err := signer.VerifyDetached(ctx, falcon.PublicKey, sig.Bytes, []byte("m"), Dilithium2)
		assert.ErrorIs(t, err, ErrAlgorithmMismatch)
	})

	t.Run("malformed key", func(t *testing.T) {
		err := signer.VerifyDetached(ctx, falcon.PublicKey[:32], sig.Bytes, []byte("m"), Falcon512)
		assert.ErrorIs(t, err, ErrVerifyFailed)
	})

	t.Run("short signature", func(t *testing.T) {
		err := signer.VerifyDetached(ctx, falcon.PublicKey, sig.Bytes[:10], []byte("m"), Falcon512)
		assert.ErrorIs(t, err, ErrVerifyFailed)

		_, err = signer.VerifyAttached(ctx, falcon.PublicKey, sig.Bytes[:10], Falcon512)
		assert.ErrorIs(t, err, ErrVerifyFailed)
	})

	t.Run("kem algorithm", func(t *testing.T) {
		_, err := signer.Sign(ctx, falcon.SecretKey, MessagePayload([]byte("m")), KEM512, Detached)
		assert.ErrorIs(t, err, ErrAlgorithmMismatch)
	})
}

func TestSigner_SaveLoadFiles(t *testing.T) {
	ctx := context.Background()
	kc := newTestKeychain(t)
	signer := NewSigner(kc)

	kp, err := kc.Generate(ctx, Dilithium3)
	require.NoError(t, err)
	keys, err := kc.Persist(ctx, kp, "signer", nil)
	require.NoError(t, err)

	doc := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(doc, []byte("contract"), 0o600))

	for _, mode := range []SignatureMode{Detached, Attached} {
		t.Run(mode.String(), func(t *testing.T) {
			sig, err := signer.SignFile(ctx, keys.SecretKey, FilePayload(doc), Dilithium3, mode)
			require.NoError(t, err)

			path := filepath.Join(kc.Dir(), "doc"+ExtSignature)
			require.NoError(t, signer.SaveSignature(ctx, sig, path))

			loaded, err := signer.LoadSignature(path, Dilithium3)
			require.NoError(t, err)
			assert.Equal(t, mode, loaded.Mode)
			assert.Equal(t, sig.Bytes, loaded.Bytes)

			if mode == Detached {
				assert.NoError(t, signer.VerifyDetached(ctx, kp.PublicKey, loaded.Bytes, []byte("contract"), Dilithium3))
				return
			}
			msg, err := signer.VerifyAttached(ctx, kp.PublicKey, loaded.Bytes, Dilithium3)
			require.NoError(t, err)
			assert.Equal(t, "contract", string(msg))
		})
	}
}

func TestSigner_LoadSignatureWrongKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sig")
	require.NoError(t, os.WriteFile(path, []byte(Armor(KindPublicKey, []byte{1})), 0o600))

	_, err := NewSigner(newTestKeychain(t)).LoadSignature(path, Falcon512)
	assert.ErrorIs(t, err, ErrFormat)
}
