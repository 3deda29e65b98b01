// Package tld loads a compiled public suffix rule file and answers
// longest-match lookups against it.
//
// A rule file is produced ahead of time by cmd/tldc from human-edited rule
// sources (see internal/compiler) and loaded once at process start with
// Load, LoadReader, or LoadIfAbsent; every Lookup, PublicSuffix,
// EffectiveTLDPlusOne, LookupURI, and LookupEmailList call afterwards reads
// the process-wide loaded file set up by that call. A small rule set is
// built into the library (see embed.go) so a binary that never ships its
// own compiled file still resolves well-known TLDs.
//
// List adapts the loaded rule set to net/http/cookiejar.PublicSuffixList:
//
//	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: tld.List})
package tld

import (
	"fmt"
	"strings"
)

// PublicSuffix returns the public suffix of domain using the currently
// loaded rule set, plus whether that suffix's status is "valid" (the
// nearest equivalent of the old ICANN/private distinction once every
// loaded rule's registration status, not just ICANN membership, is
// available via Lookup).
func PublicSuffix(domain string) (string, bool) {
	lowered, _ := Lowercase(domain)
	res, info := Lookup(lowered)
	if res == Null || res == NoTLD {
		return "", false
	}
	if res == BadURI || res == NotFound {
		if dot := strings.LastIndex(domain, "."); dot >= 0 {
			return domain[dot+1:], false
		}
		return "", false
	}
	return info.TLD, res == Success
}

// HasPublicSuffix reports whether domain's TLD is known to the loaded
// rule set.
func HasPublicSuffix(domain string) bool {
	lowered, _ := Lowercase(domain)
	res, _ := Lookup(lowered)
	return res == Success || res == Invalid
}

// EffectiveTLDPlusOne returns the public suffix plus one more label, e.g.
// "golang.org" for "foo.bar.golang.org".
func EffectiveTLDPlusOne(domain string) (string, error) {
	suffix, _ := PublicSuffix(domain)
	if len(domain) <= len(suffix) {
		return "", fmt.Errorf("tld: cannot derive eTLD+1 for domain %q", domain)
	}

	i := len(domain) - len(suffix) - 1
	if domain[i] != '.' {
		return "", fmt.Errorf("tld: invalid public suffix %q for domain %q", suffix, domain)
	}

	return domain[1+strings.LastIndex(domain[:i], "."):], nil
}