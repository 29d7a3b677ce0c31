package crypto

import (
	"fmt"
	"strconv"
	"strings"
)

// Family identifies an asymmetric primitive family.
type Family uint8

const (
	// FamilyKEM is ML-KEM (Kyber) key encapsulation.
	FamilyKEM Family = iota + 1
	// FamilyFalcon is FN-DSA (Falcon) signatures.
	FamilyFalcon
	// FamilyDilithium is ML-DSA (Dilithium) signatures.
	FamilyDilithium
)

func (f Family) String() string {
	switch f {
	case FamilyKEM:
		return "kem"
	case FamilyFalcon:
		return "falcon"
	case FamilyDilithium:
		return "dilithium"
	default:
		return "family(" + strconv.Itoa(int(f)) + ")"
	}
}

// IsSignature reports whether the family produces signature keypairs.
func (f Family) IsSignature() bool {
	return f == FamilyFalcon || f == FamilyDilithium
}

// Algorithm is a (family, parameter set) pair. The zero value is invalid.
type Algorithm struct {
	Family       Family
	ParameterSet int
}

var (
	KEM512     = Algorithm{FamilyKEM, 512}
	KEM768     = Algorithm{FamilyKEM, 768}
	KEM1024    = Algorithm{FamilyKEM, 1024}
	Falcon512  = Algorithm{FamilyFalcon, 512}
	Falcon1024 = Algorithm{FamilyFalcon, 1024}
	Dilithium2 = Algorithm{FamilyDilithium, 2}
	Dilithium3 = Algorithm{FamilyDilithium, 3}
	Dilithium5 = Algorithm{FamilyDilithium, 5}
)

// Algorithms lists every supported algorithm in a stable order.
var Algorithms = []Algorithm{
	KEM512, KEM768, KEM1024,
	Falcon512, Falcon1024,
	Dilithium2, Dilithium3, Dilithium5,
}

// String returns the canonical name, e.g. "kem-1024" or "dilithium-3".
func (a Algorithm) String() string {
	return a.Family.String() + "-" + strconv.Itoa(a.ParameterSet)
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	for _, known := range Algorithms {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAlgorithm parses names such as "kem-1024", "kyber1024", "falcon-512",
// "dilithium3" or "mldsa-5". Separators and case are ignored.
func ParseAlgorithm(name string) (Algorithm, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)

	prefixes := []struct {
		prefix string
		family Family
	}{
		{"kyber", FamilyKEM},
		{"mlkem", FamilyKEM},
		{"kem", FamilyKEM},
		{"falcon", FamilyFalcon},
		{"fndsa", FamilyFalcon},
		{"dilithium", FamilyDilithium},
		{"mldsa", FamilyDilithium},
	}

	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(s, p.prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			break
		}
		alg := Algorithm{Family: p.family, ParameterSet: n}
		if !alg.Valid() {
			return Algorithm{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
		}
		return alg, nil
	}

	return Algorithm{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
}
