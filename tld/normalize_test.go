package tld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/tld"
)

func TestLowercase_Empty(t *testing.T) {
	out, err := tld.Lowercase("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestLowercase_PlainASCII(t *testing.T) {
	out, err := tld.Lowercase("Example.CO.UK")
	require.NoError(t, err)
	assert.Equal(t, "example.co.uk", out)
}

func TestLowercase_PercentDecodesBeforeFolding(t *testing.T) {
	out, err := tld.Lowercase("%45xample.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "example.co.uk", out)
}

func TestLowercase_ReEscapesNonUnreservedBytes(t *testing.T) {
	out, err := tld.Lowercase("exa mple.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "exa%20mple.co.uk", out)
}

func TestLowercase_LeavesUnreservedBytesRaw(t *testing.T) {
	out, err := tld.Lowercase("a-b_c~d!e.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "a-b_c~d!e.co.uk", out)
}

func TestLowercase_UTF8AwareFolding(t *testing.T) {
	out, err := tld.Lowercase("EXÄMPLE.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "ex%C3%A4mple.co.uk", out)
}

func TestLowercase_RoundTripsAlreadyEscapedNonASCII(t *testing.T) {
	out, err := tld.Lowercase("ex%C3%84mple.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "ex%C3%A4mple.co.uk", out)
}

func TestLowercase_MalformedPercentEncodingReportsErrorButStillLowercases(t *testing.T) {
	out, err := tld.Lowercase("EXAMPLE.CO.UK%")
	require.Error(t, err)
	assert.Equal(t, "example.co.uk%", out)
}

func TestLowercase_MalformedHexDigitsReportsError(t *testing.T) {
	out, err := tld.Lowercase("EXAMPLE%ZZ.CO.UK")
	require.Error(t, err)
	assert.Equal(t, "example%zz.co.uk", out)
}
