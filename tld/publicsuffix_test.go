package tld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/globalsign/tldrules/tld"
)

var publicSuffixTestCases = []struct {
	domain, want string
}{
	// A domain with no period has no public suffix of its own (NO_TLD).
	{"", ""},
	{"ao", ""},
	{"www.ao", "ao"},
	{"pb.ao", "pb.ao"},
	{"www.pb.ao", "pb.ao"},
	{"www.xxx.yyy.zzz.pb.ao", "pb.ao"},

	{"ar", ""},
	{"www.ar", "ar"},
	{"com.ar", "com.ar"},
	{"blogspot.com.ar", "blogspot.com.ar"},
	{"www.blogspot.com.ar", "blogspot.com.ar"},

	// *.kobe.jp with the !city.kobe.jp carve-out.
	{"jp", ""},
	{"kobe.jp", "kobe.jp"},
	{"c.kobe.jp", "c.kobe.jp"},
	{"b.c.kobe.jp", "c.kobe.jp"},
	{"city.kobe.jp", "kobe.jp"},
	{"www.city.kobe.jp", "kobe.jp"},
	{"kyoto.jp", "kyoto.jp"},
	{"ide.kyoto.jp", "ide.kyoto.jp"},
	{"b.ide.kyoto.jp", "ide.kyoto.jp"},

	// *.ck with the !www.ck carve-out: the wildcard always consumes exactly
	// one label under ck, so extra leading labels never change the result,
	// and the carved-out exception always reverts to the bare registry "ck".
	{"ck", ""},
	{"test.ck", "test.ck"},
	{"b.test.ck", "test.ck"},
	{"www.ck", "ck"},
	{"www.www.ck", "ck"},

	{"bd", ""},
	{"www.bd", "www.bd"},
	{"zzz.bd", "zzz.bd"},

	{"uk", ""},
	{"co.uk", "co.uk"},
	{"blogspot.co.uk", "blogspot.co.uk"},
	{"sch.uk", "sch.uk"},
	{"mod.sch.uk", "mod.sch.uk"},

	{"us", ""},
	{"ak.us", "ak.us"},
	{"k12.ak.us", "k12.ak.us"},
	{"test.k12.ak.us", "k12.ak.us"},

	{"nosuchtld", ""},
}

func TestPublicSuffix(t *testing.T) {
	loadTestRules(t)
	for _, tc := range publicSuffixTestCases {
		got, _ := tld.PublicSuffix(tc.domain)
		assert.Equal(t, tc.want, got, "domain %q", tc.domain)
	}
}

func TestEffectiveTLDPlusOne(t *testing.T) {
	loadTestRules(t)

	cases := []struct{ domain, want string }{
		{"example.co.uk", "example.co.uk"},
		{"www.example.co.uk", "example.co.uk"},
		{"test.kyoto.jp", "test.kyoto.jp"},
		{"www.test.kyoto.jp", "test.kyoto.jp"},
	}
	for _, tc := range cases {
		got, err := tld.EffectiveTLDPlusOne(tc.domain)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got, "domain %q", tc.domain)
	}

	_, err := tld.EffectiveTLDPlusOne("co.uk")
	assert.Error(t, err)
}

func TestHasPublicSuffix(t *testing.T) {
	loadTestRules(t)
	assert.True(t, tld.HasPublicSuffix("example.com"))
	assert.True(t, tld.HasPublicSuffix("example.co.uk"))
}