package crypto

import "testing"

func TestSecret_Destroy(t *testing.T) {
	buf := []byte("passphrase")
	s := NewSecret(buf)

	if s.Len() != len("passphrase") {
		t.Errorf("Len() = %d", s.Len())
	}

	s.Destroy()

	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
	if s.Bytes() != nil {
		t.Error("Bytes() not nil after Destroy")
	}

	// second call is a no-op
	s.Destroy()
}

func TestSecret_Nil(t *testing.T) {
	var s *Secret
	if s.Bytes() != nil || s.Len() != 0 {
		t.Error("nil secret should be empty")
	}
	s.Destroy()
}
