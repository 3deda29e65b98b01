package tld

import (
	"errors"
	"strings"
)

// errMalformedPercentEncoding is returned by Lowercase when domain contains
// a '%' not followed by two valid hex digits.
var errMalformedPercentEncoding = errors.New("tld: malformed percent-encoding")

// Lowercase folds domain into the canonical form Lookup expects, mirroring
// src/tld_domain_to_lowercase.c: the input is first percent-decoded (every
// "%XX" triplet and raw byte alike), the resulting UTF-8 text is
// lowercased rune by rune, and the result is then re-escaped byte by byte,
// leaving only ASCII letters, digits, and ".-/_~!" unescaped and encoding
// everything else (including multi-byte UTF-8 sequences) back to "%XX"
// with uppercase hex digits. This matches the original's "URL encoded,
// valid UTF-8 in, URL encoded out" contract rather than merely applying
// idna.ToASCII: a caller may pass a raw label, a percent-encoded one, or a
// mix of both and get the same normalized, comparison-ready string back.
//
// On a malformed "%XX" triplet, Lowercase still returns domain lowercased
// with strings.ToLower and not percent-decoded (never an empty string for
// non-empty input), so a caller that ignores the error gets the same string
// Lookup would have received anyway; Lookup reports NotFound when it
// doesn't match anything.
func Lowercase(domain string) (string, error) {
	if domain == "" {
		return "", nil
	}

	decoded, err := percentDecode(domain)
	if err != nil {
		return strings.ToLower(domain), err
	}

	return percentEscape(strings.ToLower(decoded)), nil
}

// percentDecode resolves every "%XX" triplet in s to its raw byte, passing
// any other byte through unchanged.
func percentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return s, errMalformedPercentEncoding
		}
		hi, ok1 := hexVal(s[i+1])
		lo, ok2 := hexVal(s[i+2])
		if !ok1 || !ok2 {
			return s, errMalformedPercentEncoding
		}
		sb.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return sb.String(), nil
}

// percentEscape re-escapes every byte of s that is not an ASCII letter,
// digit, or one of ".-/_~!" back to an uppercase "%XX" triplet.
func percentEscape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigit(c >> 4))
		sb.WriteByte(hexDigit(c & 0x0F))
	}
	return sb.String()
}

func isUnreservedByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '/' || c == '_' || c == '~' || c == '!':
		return true
	default:
		return false
	}
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
