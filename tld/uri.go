package tld

import (
	"strings"
)

// URIFlags adjusts how strict LookupURI is about characters in the input,
// mirroring the VALID_URI_* flag set from the original URI checker (§4.J).
type URIFlags uint8

const (
	// URIASCIIOnly refuses any byte (raw or percent-encoded) with the high
	// bit set, i.e. anything outside the first 128 code points (0-127).
	URIASCIIOnly URIFlags = 1 << iota
	// URINoSpaces refuses a space whether it is encoded with '+', '%20',
	// or written verbatim.
	URINoSpaces
)

// LookupURI parses uri as scheme://[user[:pass]@]host[:port]/path?query#frag,
// checks the scheme against schemes (a nil or empty slice allows any
// scheme), and runs the host through Lookup. It mirrors the boundary
// contract in §4.J: malformed structure (missing "//", an empty user with a
// ':' present, a non-digit port, a malformed query string) is reported as
// BadURI rather than as a Go error, so callers can switch on the same
// closed Result enumeration Lookup uses.
func LookupURI(uri string, schemes []string, flags URIFlags) (Result, Info) {
	if uri == "" {
		return Null, Info{}
	}
	if strings.ContainsAny(uri, "\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0b\x0c\x0e\x0f") {
		return BadURI, Info{}
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return BadURI, Info{}
	}
	if len(schemes) > 0 && !schemeAllowed(scheme, schemes) {
		return BadURI, Info{}
	}

	idx := strings.IndexAny(rest, "/?#")
	authority, tail := rest, ""
	if idx >= 0 {
		authority, tail = rest[:idx], rest[idx:]
	}
	if authority == "" {
		return BadURI, Info{}
	}
	if !validURIBytes(authority, flags, true) {
		return BadURI, Info{}
	}
	if !validQueryString(tail, flags) {
		return BadURI, Info{}
	}

	host := authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		userinfo := authority[:at]
		host = authority[at+1:]
		if userinfo == "" {
			return BadURI, Info{}
		}
		if strings.Count(userinfo, "@") > 0 {
			return BadURI, Info{}
		}
		if user, pass, hasColon := strings.Cut(userinfo, ":"); hasColon {
			if user == "" || pass == "" {
				return BadURI, Info{}
			}
		}
	}
	if strings.Contains(host, "@") {
		return BadURI, Info{}
	}

	if bracket := strings.LastIndex(host, "]"); bracket < 0 {
		if colon := strings.LastIndex(host, ":"); colon >= 0 {
			port := host[colon+1:]
			host = host[:colon]
			for _, c := range port {
				if c < '0' || c > '9' {
					return BadURI, Info{}
				}
			}
		}
	}

	lowered, err := Lowercase(host)
	if err != nil {
		return BadURI, Info{}
	}
	return Lookup(lowered)
}

func schemeAllowed(scheme string, schemes []string) bool {
	for _, s := range schemes {
		if s == "*" || strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// validURIBytes applies the character checks §4.J specifies: raw or
// percent-encoded non-ASCII bytes refused under URIASCIIOnly, and spaces
// (verbatim, '+', or "%20") refused. In the host region (hostRegion=true,
// the authority up to the first '/', '?', or '#') a space is always
// invalid, matching the host grammar's own character class; in the
// path/query/fragment region it is only refused when URINoSpaces is set,
// since "+" there is the conventional, explicitly opt-in space encoding.
func validURIBytes(s string, flags URIFlags, hostRegion bool) bool {
	rejectSpaces := hostRegion || flags&URINoSpaces != 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 >= len(s) {
				return false
			}
			hi, ok1 := hexVal(s[i+1])
			_, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return false
			}
			if rejectSpaces && s[i+1] == '2' && s[i+2] == '0' {
				return false
			}
			if flags&URIASCIIOnly != 0 && hi >= 8 {
				return false
			}
			i += 2
		case rejectSpaces && (c == ' ' || c == '+'):
			return false
		case flags&URIASCIIOnly != 0 && c >= 0x80:
			return false
		}
	}
	return true
}

// validQueryString applies §4.J's query/fragment grammar checks to tail,
// the substring starting at the first of '/', '?', or '#' (so it covers
// the path, query, and fragment together, the way the original checker
// scans them in one pass). Beyond the byte-level checks validURIBytes
// already performs, this refuses: a literal '&' before any '?' has been
// seen, an empty query-string key ("?=..." or "...&=..."), and a second
// literal '?' appearing before any '#'.
func validQueryString(tail string, flags URIFlags) bool {
	if !validURIBytes(tail, flags, false) {
		return false
	}

	inFragment := false
	haveQuery := false
	keyStart := -1
	for i := 0; i < len(tail); i++ {
		c := tail[i]
		switch {
		case c == '#':
			inFragment = true
			haveQuery = false
			keyStart = -1
		case c == '?' && !inFragment:
			if haveQuery {
				return false // double '?'
			}
			haveQuery = true
			keyStart = i + 1
		case c == '&' && !inFragment:
			if !haveQuery {
				return false // '&' must be encoded if used before '?'
			}
			keyStart = i + 1
		case c == '=' && !inFragment && haveQuery:
			if keyStart == i {
				return false // empty query-string key
			}
			keyStart = -1
		}
		if c == '%' {
			i += 2 // already range-checked by validURIBytes
		}
	}
	return true
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
