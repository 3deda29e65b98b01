package tld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/globalsign/tldrules/tld"
)

func TestLookup_NoTLDForZeroPeriods(t *testing.T) {
	loadTestRules(t)
	res, info := tld.Lookup("uk")
	assert.Equal(t, tld.NoTLD, res)
	assert.Equal(t, tld.Info{}, info)
}

func TestLookup_EmptyDomainIsNull(t *testing.T) {
	loadTestRules(t)
	res, info := tld.Lookup("")
	assert.Equal(t, tld.Null, res)
	assert.Equal(t, tld.Info{}, info)
}

func TestLookup_AdjacentPeriodsAreBadURI(t *testing.T) {
	loadTestRules(t)
	res, _ := tld.Lookup("foo..uk")
	assert.Equal(t, tld.BadURI, res)
}

func TestLookup_UnknownTLDIsNotFound(t *testing.T) {
	loadTestRules(t)
	res, _ := tld.Lookup("example.nosuchtld")
	assert.Equal(t, tld.NotFound, res)
}

func TestLookup_NoRuleSetLoaded(t *testing.T) {
	tld.FreeLoaded()
	res, info := tld.Lookup("example.com")
	assert.Equal(t, tld.NotFound, res)
	assert.Equal(t, tld.Info{}, info)
}

func TestLookup_ExactMultiSegmentRuleConsumesWholeDomain(t *testing.T) {
	loadTestRules(t)

	cases := []struct{ domain, wantTLD string }{
		{"com.ar", "com.ar"},
		{"co.uk", "co.uk"},
		{"blogspot.co.uk", "blogspot.co.uk"},
		{"ide.kyoto.jp", "ide.kyoto.jp"},
		{"sch.uk", "sch.uk"},
		{"kobe.jp", "kobe.jp"},
	}
	for _, tc := range cases {
		res, info := tld.Lookup(tc.domain)
		assert.Equal(t, tld.Success, res, "domain %q", tc.domain)
		assert.Equal(t, tc.wantTLD, info.TLD, "domain %q", tc.domain)
		assert.Equal(t, tc.domain, tc.domain[info.Offset+1:], "domain %q", tc.domain)
	}
}

func TestLookup_WildcardFallback(t *testing.T) {
	loadTestRules(t)

	res, info := tld.Lookup("anything.bd")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "anything.bd", info.TLD)
	assert.Equal(t, "cctld", info.Category)
}

func TestLookup_ExceptionCarveOut(t *testing.T) {
	loadTestRules(t)

	res, info := tld.Lookup("www.ck")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "ck", info.TLD)
	assert.Equal(t, tld.StatusException, info.Status)

	res, info = tld.Lookup("city.kobe.jp")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "kobe.jp", info.TLD)
	assert.Equal(t, tld.StatusException, info.Status)
}

func TestLookup_ExceptionCarveOutIgnoresExtraLabels(t *testing.T) {
	loadTestRules(t)

	res, info := tld.Lookup("www.www.ck")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "ck", info.TLD)

	res, info = tld.Lookup("www.city.kobe.jp")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "kobe.jp", info.TLD)
}

func TestLookup_MaxLevelTruncatesExcessLabels(t *testing.T) {
	loadTestRules(t)

	res, info := tld.Lookup("a.b.c.d.e.pb.ao")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "pb.ao", info.TLD)
}

func TestLookup_TagsCarryCategory(t *testing.T) {
	loadTestRules(t)

	_, info := tld.Lookup("example.arpa")
	assert.Equal(t, "infrastructure", info.Category)
}
