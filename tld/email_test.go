package tld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/tld"
)

func TestLookupEmailList_Bare(t *testing.T) {
	loadTestRules(t)

	res, addrs := tld.LookupEmailList("person@example.co.uk")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 1)
	assert.Equal(t, "person", addrs[0].User)
	assert.Equal(t, "example.co.uk", addrs[0].Domain)
	assert.Equal(t, "person@example.co.uk", addrs[0].Canonical)
	assert.Equal(t, "person@example.co.uk", addrs[0].EmailOnly)
}

func TestLookupEmailList_FullName(t *testing.T) {
	loadTestRules(t)

	res, addrs := tld.LookupEmailList(`"A Person" <person@example.co.uk>`)
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 1)
	assert.Equal(t, "A Person", addrs[0].FullName)
	assert.Equal(t, `"A Person" <person@example.co.uk>`, addrs[0].Canonical)
	assert.Equal(t, "person@example.co.uk", addrs[0].EmailOnly)
}

func TestLookupEmailList_EmailOnlyKeepsOriginalCaseDomain(t *testing.T) {
	loadTestRules(t)

	res, addrs := tld.LookupEmailList("person@Example.Co.UK")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 1)
	assert.Equal(t, "person@Example.Co.UK", addrs[0].EmailOnly)
	assert.Equal(t, "person@example.co.uk", addrs[0].Canonical)
}

func TestLookupEmailList_MultipleAddresses(t *testing.T) {
	loadTestRules(t)

	res, addrs := tld.LookupEmailList("a@example.co.uk, b@example.ar")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 2)
	assert.Equal(t, "example.co.uk", addrs[0].Domain)
	assert.Equal(t, "example.ar", addrs[1].Domain)
}

func TestLookupEmailList_Group(t *testing.T) {
	loadTestRules(t)

	res, addrs := tld.LookupEmailList("friends: a@example.co.uk, b@example.ar;")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 2)
	assert.Equal(t, "friends", addrs[0].Group)
	assert.Equal(t, "friends", addrs[1].Group)
}

func TestLookupEmailList_Empty(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("   ")
	assert.Equal(t, tld.Null, res)
	assert.Nil(t, addrs)
}

func TestLookupEmailList_MalformedAddressReportsBadURI(t *testing.T) {
	loadTestRules(t)
	res, _ := tld.LookupEmailList("not-an-address")
	assert.Equal(t, tld.BadURI, res)
}

func TestLookupEmailList_UnknownTLDReportsNotFound(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@example.nosuchtld")
	assert.Equal(t, tld.NotFound, res)
	require.Len(t, addrs, 1)
}

func TestLookupEmailList_TrailingComment(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@example.co.uk (work address)")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 1)
	assert.Equal(t, "person", addrs[0].User)
	assert.Equal(t, "example.co.uk", addrs[0].Domain)
}

func TestLookupEmailList_NestedComment(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@example.co.uk (work (primary) address)")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 1)
	assert.Equal(t, "example.co.uk", addrs[0].Domain)
}

func TestLookupEmailList_CommentBetweenAddresses(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("a@example.co.uk (first), b@example.ar (second)")
	assert.Equal(t, tld.Success, res)
	require.Len(t, addrs, 2)
	assert.Equal(t, "example.co.uk", addrs[0].Domain)
	assert.Equal(t, "example.ar", addrs[1].Domain)
}

func TestLookupEmailList_UnbalancedCommentIsBadURI(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@example.co.uk (unterminated")
	assert.Equal(t, tld.BadURI, res)
	assert.Nil(t, addrs)
}

func TestLookupEmailList_DomainLiteral(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@[192.0.2.1]")
	assert.Equal(t, tld.NotFound, res, "a domain literal has no public suffix to match, so overall falls back from Success")
	require.Len(t, addrs, 1)
	assert.Equal(t, "[192.0.2.1]", addrs[0].Domain)
	assert.Equal(t, "person@[192.0.2.1]", addrs[0].EmailOnly)
}

func TestLookupEmailList_UnmatchedDomainLiteralBracketIsBadURI(t *testing.T) {
	loadTestRules(t)
	res, addrs := tld.LookupEmailList("person@[192.0.2.1")
	assert.Equal(t, tld.BadURI, res)
	assert.Nil(t, addrs)
}
