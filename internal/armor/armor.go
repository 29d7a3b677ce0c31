// Package armor converts binary key material to and from the ASCII-armored
// text form stored on disk:
//
//	-----BEGIN PUBLIC KEY-----
//	<lowercase hex>
//	-----END PUBLIC KEY-----
//
// Decoding tolerates surrounding text: the block starts at the first BEGIN
// label and ends at the last matching END label.
package armor

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat is returned when a BEGIN or END label is missing or misplaced.
	ErrFormat = errors.New("armor: missing or malformed label")

	// ErrEncoding is returned when the body is not valid hex.
	ErrEncoding = errors.New("armor: malformed hex body")
)

// Kind identifies what an armored block holds.
type Kind uint8

const (
	PublicKey Kind = iota + 1
	SecretKey
	SharedSecret
	Ciphertext
	EncryptedMessage
	Signature
	SignedMessage
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{PublicKey, SecretKey, SharedSecret, Ciphertext, EncryptedMessage, Signature, SignedMessage}

// labels holds the canonical output label first, followed by labels that
// are still accepted on input.
var labels = map[Kind][]string{
	PublicKey:        {"PUBLIC KEY"},
	SecretKey:        {"SECRET KEY", "PRIVATE KEY"},
	SharedSecret:     {"SHARED SECRET"},
	Ciphertext:       {"CIPHERTEXT"},
	EncryptedMessage: {"ENCRYPTED MESSAGE"},
	Signature:        {"SIGNATURE"},
	SignedMessage:    {"SIGNED MESSAGE"},
}

// Label returns the canonical label written for k.
func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l[0]
	}
	return ""
}

func (k Kind) String() string {
	if l := k.Label(); l != "" {
		return strings.ToLower(l)
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func begin(label string) string { return "-----BEGIN " + label + "-----" }
func end(label string) string   { return "-----END " + label + "-----" }

// Encode wraps b in an armored block of kind k.
func Encode(k Kind, b []byte) string {
	label := k.Label()
	var sb strings.Builder
	sb.Grow(len(begin(label)) + 2*len(b) + len(end(label)) + 2)
	sb.WriteString(begin(label))
	sb.WriteByte('\n')
	sb.WriteString(hex.EncodeToString(b))
	sb.WriteByte('\n')
	sb.WriteString(end(label))
	return sb.String()
}

// Decode extracts the bytes of the first block of kind k in text.
func Decode(k Kind, text string) ([]byte, error) {
	accepted, ok := labels[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrFormat, uint8(k))
	}

	var lastErr error
	for _, label := range accepted {
		body, err := extract(text, label)
		if err != nil {
			lastErr = err
			continue
		}
		out, err := hex.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return out, nil
	}
	return nil, lastErr
}

// extract scans with two cursors: the first BEGIN label from the left and
// the last END label from the right. The span between them is trimmed.
func extract(text, label string) (string, error) {
	open, closing := begin(label), end(label)

	start := strings.Index(text, open)
	if start < 0 {
		return "", fmt.Errorf("%w: %q not found", ErrFormat, open)
	}
	stop := strings.LastIndex(text, closing)
	if stop < 0 {
		return "", fmt.Errorf("%w: %q not found", ErrFormat, closing)
	}

	bodyStart := start + len(open)
	if stop < bodyStart {
		return "", fmt.Errorf("%w: %q precedes %q", ErrFormat, closing, open)
	}

	return strings.TrimSpace(text[bodyStart:stop]), nil
}

// Detect returns the kind of the first armored block found in text.
func Detect(text string) (Kind, error) {
	first, found := -1, Kind(0)
	for _, k := range Kinds {
		for _, label := range labels[k] {
			i := strings.Index(text, begin(label))
			if i >= 0 && (first < 0 || i < first) {
				first, found = i, k
			}
		}
	}
	if first < 0 {
		return 0, fmt.Errorf("%w: no armored block", ErrFormat)
	}
	return found, nil
}
