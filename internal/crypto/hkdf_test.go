package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// fastKDF keeps Argon2id cheap in tests.
var fastKDF = KDFParams{Time: 1, Memory: 64, Threads: 1}

func TestDeriveKey(t *testing.T) {
	t.Parallel()
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		salt   []byte
		info   []byte
		length int
	}{
		{"basic 32 bytes", make([]byte, 32), []byte("info"), 32},
		{"empty salt", nil, []byte("info"), 32},
		{"empty info", make([]byte, 32), nil, 32},
		{"16 byte key", make([]byte, 32), []byte("info"), 16},
		{"64 byte key", make([]byte, 32), []byte("info"), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKey(secret, tt.salt, tt.info, tt.length)
			if err != nil {
				t.Fatalf("DeriveKey() error = %v", err)
			}

			if len(key) != tt.length {
				t.Errorf("key length = %d, want %d", len(key), tt.length)
			}
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	t.Parallel()
	secret := []byte("test secret key for derivation")
	salt := []byte("test salt value")
	info := []byte("test info value")

	key1, err := DeriveKey(secret, salt, info, 32)
	if err != nil {
		t.Fatal(err)
	}

	key2, err := DeriveKey(secret, salt, info, 32)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(key1, key2) {
		t.Error("DeriveKey is not deterministic")
	}
}

func TestDeriveEnvelopeKey(t *testing.T) {
	t.Parallel()
	ss := bytes.Repeat([]byte{0x11}, 32)
	ct := bytes.Repeat([]byte{0x22}, 64)
	pw := []byte("pw1")

	base, err := DeriveEnvelopeKey(ss, pw, ct, "standard", fastKDF)
	if err != nil {
		t.Fatalf("DeriveEnvelopeKey() error = %v", err)
	}
	if len(base) != SymmetricKeySize {
		t.Fatalf("key length = %d, want %d", len(base), SymmetricKeySize)
	}

	again, _ := DeriveEnvelopeKey(ss, pw, ct, "standard", fastKDF)
	if !bytes.Equal(base, again) {
		t.Error("DeriveEnvelopeKey is not deterministic")
	}

	variants := []struct {
		name  string
		ss    []byte
		pw    []byte
		ct    []byte
		label string
	}{
		{"shared secret", bytes.Repeat([]byte{0x12}, 32), pw, ct, "standard"},
		{"passphrase", ss, []byte("pw2"), ct, "standard"},
		{"kem ciphertext", ss, pw, bytes.Repeat([]byte{0x23}, 64), "standard"},
		{"label", ss, pw, ct, "extended"},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			key, err := DeriveEnvelopeKey(v.ss, v.pw, v.ct, v.label, fastKDF)
			if err != nil {
				t.Fatal(err)
			}
			if bytes.Equal(key, base) {
				t.Errorf("changing %s did not change the key", v.name)
			}
		})
	}
}
