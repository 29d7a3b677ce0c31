package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"
)

func TestEncryptAES_DecryptAES_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty", []byte{}, nil},
		{"simple", []byte("hello world"), nil},
		{"with aad", []byte("hello world"), []byte("header")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}, nil},
		{"large", make([]byte, 10000), []byte("aad")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, AESKeySize)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}

			ciphertext, err := EncryptAES(key, tt.plaintext, tt.aad)
			if err != nil {
				t.Fatalf("EncryptAES() error = %v", err)
			}

			// Ciphertext should be nonce + ciphertext + tag
			expectedLen := AESNonceSize + len(tt.plaintext) + AESTagSize
			if len(ciphertext) != expectedLen {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), expectedLen)
			}

			decrypted, err := DecryptAES(key, ciphertext, tt.aad)
			if err != nil {
				t.Fatalf("DecryptAES() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptAES_FreshNonce(t *testing.T) {
	key := make([]byte, AESKeySize)
	plaintext := []byte("same message")

	ct1, err := EncryptAES(key, plaintext, nil)
	if err != nil {
		t.Fatal(err)
	}
	ct2, err := EncryptAES(key, plaintext, nil)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(ct1[:AESNonceSize], ct2[:AESNonceSize]) {
		t.Error("two encryptions used the same nonce")
	}
}

func TestEncryptAES_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"empty", 0},
		{"too short", 16},
		{"too long", 64},
	}

	plaintext := []byte("test")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			_, err := EncryptAES(key, plaintext, nil)
			if !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("expected ErrInvalidKeySize, got %v", err)
			}
		})
	}
}

func TestDecryptAES_InvalidKeySize(t *testing.T) {
	key := make([]byte, 16) // Wrong size
	ciphertext := make([]byte, AESNonceSize+AESTagSize+10)

	_, err := DecryptAES(key, ciphertext, nil)
	if !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestDecryptAES_CiphertextTooShort(t *testing.T) {
	key := make([]byte, AESKeySize)

	tests := []struct {
		name   string
		length int
	}{
		{"empty", 0},
		{"only nonce", AESNonceSize},
		{"nonce plus partial tag", AESNonceSize + AESTagSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext := make([]byte, tt.length)
			_, err := DecryptAES(key, ciphertext, nil)
			if !errors.Is(err, ErrCiphertextTooShort) {
				t.Errorf("expected ErrCiphertextTooShort, got %v", err)
			}
		})
	}
}

func TestDecryptAES_TamperedCiphertext(t *testing.T) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	plaintext := []byte("sensitive data")
	ciphertext, err := EncryptAES(key, plaintext, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range ciphertext {
		tampered := bytes.Clone(ciphertext)
		tampered[i] ^= 0x01

		if _, err := DecryptAES(key, tampered, nil); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("byte %d: expected ErrDecryptionFailed, got %v", i, err)
		}
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	key1 := make([]byte, AESKeySize)
	key2 := make([]byte, AESKeySize)
	if _, err := rand.Read(key1); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(key2); err != nil {
		t.Fatal(err)
	}

	ciphertext, err := EncryptAES(key1, []byte("sensitive data"), nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = DecryptAES(key2, ciphertext, nil)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptAES_WrongAAD(t *testing.T) {
	key := make([]byte, AESKeySize)
	ciphertext, err := EncryptAES(key, []byte("secret message"), []byte("aad-1"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = DecryptAES(key, ciphertext, []byte("aad-2"))
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func BenchmarkEncryptAES(b *testing.B) {
	key := make([]byte, AESKeySize)
	plaintext := make([]byte, 1000)

	rand.Read(key)
	rand.Read(plaintext)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EncryptAES(key, plaintext, nil)
	}
}

func BenchmarkDecryptAES(b *testing.B) {
	key := make([]byte, AESKeySize)
	plaintext := make([]byte, 1000)

	rand.Read(key)
	rand.Read(plaintext)

	ciphertext, _ := EncryptAES(key, plaintext, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecryptAES(key, ciphertext, nil)
	}
}

// Example_encryptDecrypt demonstrates encrypting and decrypting data with AES-256-GCM.
func Example_encryptDecrypt() {
	// Generate a random 256-bit key.
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	// The nonce is generated internally and prefixed to the output.
	ciphertext, err := EncryptAES(key, []byte("Hello, World!"), nil)
	if err != nil {
		panic(err)
	}

	decrypted, err := DecryptAES(key, ciphertext, nil)
	if err != nil {
		panic(err)
	}

	fmt.Println(string(decrypted))
	// Output: Hello, World!
}
