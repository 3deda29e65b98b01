package tld

import "strings"

// EmailAddress is one address extracted from an RFC 5322 address-list
// field (§4.J). Canonical is "fullname" <user@domain> (or bare user@domain
// with no FullName) with the domain lowercased; EmailOnly is the same pair
// with the domain exactly as written in the source field, undecorated by
// any full name or group; Group carries the RFC 5322 group name ("" when
// the address was not part of a "group: a@b, c@d;" construct).
type EmailAddress struct {
	Group     string
	Original  string
	FullName  string
	User      string
	Domain    string
	EmailOnly string
	Canonical string
}

// LookupEmailList parses list as a comma-separated RFC 5322 address-list
// (the subset actually needed here: optional "Full Name <user@domain>" or
// bare "user@domain" entries, "group: a@b, c@d;" groups, parenthesized
// comments - including nested ones - and bracketed domain literals like
// "user@[192.0.2.1]") and runs every extracted address's domain through
// Lookup. The overall Result is the first non-Success result encountered,
// or Success if every address's domain resolved to a valid public suffix.
func LookupEmailList(list string) (Result, []EmailAddress) {
	if strings.TrimSpace(list) == "" {
		return Null, nil
	}

	uncommented, ok := stripComments(list)
	if !ok {
		return BadURI, nil
	}

	var out []EmailAddress
	overall := Success
	group := ""

	for _, field := range splitAddressList(uncommented) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if name, rest, ok := strings.Cut(field, ":"); ok && !strings.Contains(name, "@") {
			group = strings.TrimSpace(name)
			field = strings.TrimSpace(rest)
		}
		// A trailing ';' closes the current group after this entry.
		addrGroup := group
		if strings.HasSuffix(field, ";") {
			field = strings.TrimSpace(strings.TrimSuffix(field, ";"))
			group = ""
		}
		if field == "" {
			continue
		}

		addr, ok := parseAddress(field)
		if !ok {
			if overall == Success {
				overall = BadURI
			}
			continue
		}
		addr.Group = addrGroup
		addr.Original = field
		addr.EmailOnly = addr.User + "@" + addr.Domain

		lowered, _ := Lowercase(addr.Domain)
		res, _ := Lookup(lowered)
		addr.Canonical = addr.User + "@" + lowered
		if addr.FullName != "" {
			addr.Canonical = `"` + addr.FullName + `" <` + addr.Canonical + ">"
		}
		out = append(out, addr)
		if res != Success && overall == Success {
			overall = res
		}
	}

	return overall, out
}

// stripComments removes every RFC 5322 "(...)" comment from s, including
// nested ones, replacing each with a single space; parentheses inside a
// quoted string are left untouched since quoting, not commenting, governs
// there. Reports false on unbalanced parentheses or an unterminated quoted
// string.
func stripComments(s string) (string, bool) {
	var sb strings.Builder
	depth := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			if depth == 0 {
				sb.WriteByte(c)
				sb.WriteByte(s[i+1])
			}
			i++
			continue
		}
		switch {
		case c == '"' && depth == 0:
			inQuotes = !inQuotes
			sb.WriteByte(c)
		case inQuotes:
			sb.WriteByte(c)
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return "", false
			}
			depth--
			if depth == 0 {
				sb.WriteByte(' ')
			}
		case depth > 0:
			// discarded: inside a comment
		default:
			sb.WriteByte(c)
		}
	}
	if depth != 0 || inQuotes {
		return "", false
	}
	return sb.String(), true
}

// splitAddressList splits on top-level commas only: commas inside a
// quoted string or an angle-bracketed <...> address do not terminate an
// entry. The members of a "group: a, b;" construct are split like any other
// entries; LookupEmailList carries the group name across them.
func splitAddressList(list string) []string {
	var out []string
	depth := 0
	inQuotes := false
	start := 0
	for i, c := range list {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
			// inside a quoted string, nothing else is special
		case c == '<':
			depth++
		case c == '>':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			out = append(out, list[start:i])
			start = i + 1
		}
	}
	out = append(out, list[start:])
	return out
}

// parseAddress parses "Full Name <user@domain>" or bare "user@domain",
// where domain may be an ordinary dotted name or a bracketed domain
// literal such as "[192.0.2.1]".
func parseAddress(field string) (EmailAddress, bool) {
	fullName := ""
	addrPart := field
	if lt := strings.IndexByte(field, '<'); lt >= 0 {
		if gt := strings.IndexByte(field[lt:], '>'); gt >= 0 {
			fullName = strings.Trim(strings.TrimSpace(field[:lt]), `"`)
			addrPart = field[lt+1 : lt+gt]
		} else {
			return EmailAddress{}, false
		}
	}

	user, domain, ok := strings.Cut(addrPart, "@")
	user, domain = strings.TrimSpace(user), strings.TrimSpace(domain)
	if !ok || user == "" || domain == "" {
		return EmailAddress{}, false
	}
	if strings.Contains(domain, "@") {
		return EmailAddress{}, false
	}
	if strings.HasPrefix(domain, "[") != strings.HasSuffix(domain, "]") {
		return EmailAddress{}, false // unmatched domain-literal bracket
	}

	return EmailAddress{FullName: fullName, User: user, Domain: domain}, true
}
