package crypto

// Secret holds sensitive bytes. The buffer is locked into RAM where the
// platform allows it and zeroed by Destroy.
type Secret struct {
	b      []byte
	locked bool
}

// NewSecret takes ownership of b.
func NewSecret(b []byte) *Secret {
	s := &Secret{b: b}
	if len(b) > 0 && lockMemory(b) == nil {
		s.locked = true
	}
	return s
}

// Bytes returns the underlying buffer. It is nil after Destroy.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len returns the length of the secret.
func (s *Secret) Len() int { return len(s.Bytes()) }

// Destroy zeroes and releases the buffer. It is safe to call more than once.
func (s *Secret) Destroy() {
	if s == nil || s.b == nil {
		return
	}
	Zero(s.b)
	if s.locked {
		_ = unlockMemory(s.b)
		s.locked = false
	}
	s.b = nil
}
