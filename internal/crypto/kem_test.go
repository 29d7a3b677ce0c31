package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestKEM_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{KEM512, KEM768, KEM1024} {
		t.Run(alg.String(), func(t *testing.T) {
			k, err := KEMFor(alg)
			if err != nil {
				t.Fatal(err)
			}

			pub, sec, err := k.GenerateKeypair()
			if err != nil {
				t.Fatal(err)
			}

			ct, ss, err := k.Encapsulate(pub)
			if err != nil {
				t.Fatalf("Encapsulate() error = %v", err)
			}

			if len(ct) != k.CiphertextSize() {
				t.Errorf("ciphertext size = %d, want %d", len(ct), k.CiphertextSize())
			}
			if len(ss) != k.SharedSecretSize() {
				t.Errorf("shared secret size = %d, want %d", len(ss), k.SharedSecretSize())
			}

			ss2, err := k.Decapsulate(sec, ct)
			if err != nil {
				t.Fatalf("Decapsulate() error = %v", err)
			}

			if !bytes.Equal(ss, ss2) {
				t.Error("decapsulated shared secret does not match")
			}
		})
	}
}

func TestKEM_Sizes(t *testing.T) {
	tests := []struct {
		alg          Algorithm
		pub, sec, ct int
	}{
		{KEM512, 800, 1632, 768},
		{KEM768, 1184, 2400, 1088},
		{KEM1024, 1568, 3168, 1568},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			k, err := KEMFor(tt.alg)
			if err != nil {
				t.Fatal(err)
			}
			if k.PublicKeySize() != tt.pub || k.SecretKeySize() != tt.sec || k.CiphertextSize() != tt.ct {
				t.Errorf("sizes = (%d, %d, %d), want (%d, %d, %d)",
					k.PublicKeySize(), k.SecretKeySize(), k.CiphertextSize(), tt.pub, tt.sec, tt.ct)
			}
			if k.SharedSecretSize() != 32 {
				t.Errorf("shared secret size = %d, want 32", k.SharedSecretSize())
			}
		})
	}
}

func TestKEM_TamperedCiphertextYieldsDifferentSecret(t *testing.T) {
	k, _ := KEMFor(KEM1024)
	pub, sec, err := k.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	ct, ss, err := k.Encapsulate(pub)
	if err != nil {
		t.Fatal(err)
	}

	ct[0] ^= 0x01
	ss2, err := k.Decapsulate(sec, ct)
	if err != nil {
		t.Fatalf("Decapsulate() error = %v", err)
	}

	if bytes.Equal(ss, ss2) {
		t.Error("tampered ciphertext decapsulated to the original secret")
	}
}

func TestKEM_InvalidSizes(t *testing.T) {
	k, _ := KEMFor(KEM768)

	if _, _, err := k.Encapsulate(make([]byte, 10)); !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("expected ErrInvalidPublicKeySize, got %v", err)
	}
	if _, err := k.Decapsulate(make([]byte, 10), make([]byte, k.CiphertextSize())); !errors.Is(err, ErrInvalidSecretKeySize) {
		t.Errorf("expected ErrInvalidSecretKeySize, got %v", err)
	}
	if _, err := k.Decapsulate(make([]byte, k.SecretKeySize()), make([]byte, 10)); !errors.Is(err, ErrInvalidCiphertextSize) {
		t.Errorf("expected ErrInvalidCiphertextSize, got %v", err)
	}
}

func TestKEMFor_WrongFamily(t *testing.T) {
	if _, err := KEMFor(Falcon512); !errors.Is(err, ErrWrongFamily) {
		t.Errorf("expected ErrWrongFamily, got %v", err)
	}
	if _, err := KEMFor(Algorithm{Family: FamilyKEM, ParameterSet: 1}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestSetRandReaderForTesting_Deterministic(t *testing.T) {
	k, _ := KEMFor(KEM512)

	restore := SetRandReaderForTesting(bytes.NewReader(bytes.Repeat([]byte{0x42}, 4096)))
	pub1, _, err := k.GenerateKeypair()
	restore()
	if err != nil {
		t.Fatal(err)
	}

	restore = SetRandReaderForTesting(bytes.NewReader(bytes.Repeat([]byte{0x42}, 4096)))
	pub2, _, err := k.GenerateKeypair()
	restore()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(pub1, pub2) {
		t.Error("same seed produced different keys")
	}
}

func TestGenerateKeypair_RandFailure(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader(nil))
	defer restore()

	k, _ := KEMFor(KEM512)
	if _, _, err := k.GenerateKeypair(); err == nil {
		t.Error("expected error from exhausted random source")
	}
}
