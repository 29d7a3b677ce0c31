package crypto

// Role names the part of a keypair or exchange a byte string plays.
type Role uint8

const (
	RolePublicKey Role = iota + 1
	RoleSecretKey
	RoleCiphertext
	RoleSharedSecret
	RoleSignature
)

// ExpectedSize returns the fixed encoded width of role under alg, or false if
// alg has no such role (a signature scheme has no ciphertext).
func ExpectedSize(alg Algorithm, role Role) (int, bool) {
	if alg.Family == FamilyKEM {
		k, err := KEMFor(alg)
		if err != nil {
			return 0, false
		}
		switch role {
		case RolePublicKey:
			return k.PublicKeySize(), true
		case RoleSecretKey:
			return k.SecretKeySize(), true
		case RoleCiphertext:
			return k.CiphertextSize(), true
		case RoleSharedSecret:
			return k.SharedSecretSize(), true
		}
		return 0, false
	}

	s, err := SignatureSchemeFor(alg)
	if err != nil {
		return 0, false
	}
	switch role {
	case RolePublicKey:
		return s.PublicKeySize(), true
	case RoleSecretKey:
		return s.SecretKeySize(), true
	case RoleSignature:
		return s.SignatureSize(), true
	}
	return 0, false
}

// IdentifyBySize returns the algorithms whose role encoding is exactly n
// bytes. Public and secret key widths are unique across the supported set.
func IdentifyBySize(role Role, n int) []Algorithm {
	var out []Algorithm
	for _, alg := range Algorithms {
		if size, ok := ExpectedSize(alg, role); ok && size == n {
			out = append(out, alg)
		}
	}
	return out
}
