package machineid

import (
	"strings"
	"unicode"
)

const (
	// Prefix is the literal prefix of every canonical identifier.
	Prefix = "NAVER-"
	// HexLength is the number of hex characters following the prefix.
	HexLength = 32

	legacyPrefix = "naver"
)

// ID is a canonical machine identifier. The zero value is "absent".
type ID string

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// Hex returns the 32 character payload without the prefix.
func (id ID) Hex() string {
	return strings.TrimPrefix(string(id), Prefix)
}

// Short returns the first n characters of the identifier, for display.
func (id ID) Short(n int) string {
	s := string(id)
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// NormalizeToken keeps only letters and digits, in any script, and lowercases
// them. Hangul host names survive, so "김철수-PC" and "이영희-PC" stay distinct.
func NormalizeToken(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Normalize validates value and returns it in canonical form. It accepts the
// prefixed form and the legacy form without a separator. Anything else,
// including a payload that is not exactly 32 hex characters, is absent.
func Normalize(value string) (ID, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", false
	}

	var payload string
	switch {
	case len(raw) > len(Prefix) && strings.EqualFold(raw[:len(Prefix)], Prefix):
		payload = raw[len(Prefix):]
	case len(raw) > len(legacyPrefix) && strings.EqualFold(raw[:len(legacyPrefix)], legacyPrefix):
		payload = raw[len(legacyPrefix):]
	default:
		return "", false
	}

	payload = strings.ToLower(payload)
	if !isHex(payload, HexLength) {
		return "", false
	}
	return ID(Prefix + payload), true
}

// MustNormalize is Normalize for values known to be well formed, such as test
// fixtures. It panics on malformed input.
func MustNormalize(value string) ID {
	id, ok := Normalize(value)
	if !ok {
		panic("machineid: malformed identifier " + value)
	}
	return id
}

// FromDigest builds an identifier from the leading hex characters of a digest.
func FromDigest(hexDigest string) (ID, bool) {
	if len(hexDigest) < HexLength {
		return "", false
	}
	return Normalize(Prefix + hexDigest[:HexLength])
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
