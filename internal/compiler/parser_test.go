package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/tld"
)

func TestParser_GlobalScope(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[uk]
[co.uk]
`)
	require.NoError(t, p.ParseFile("rules.ini", src))

	uk, ok := p.Lookup("uk")
	require.True(t, ok)
	assert.Equal(t, tld.StatusValid, uk.Status())
	cat, err := uk.EffectiveCategory()
	require.NoError(t, err)
	assert.Equal(t, "cctld", cat)

	coUk, ok := p.Lookup("co.uk")
	require.True(t, ok)
	assert.Equal(t, tld.StatusValid, coUk.Status())
	assert.Equal(t, []string{"co", "uk"}, coUk.Segments())
}

func TestParser_PerRuleOverridesGlobal(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[arpa]
tag/category = infrastructure
`)
	require.NoError(t, p.ParseFile("rules.ini", src))

	arpa, ok := p.Lookup("arpa")
	require.True(t, ok)
	cat, err := arpa.EffectiveCategory()
	require.NoError(t, err)
	assert.Equal(t, "infrastructure", cat)
}

func TestParser_ExceptionRule(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[ck]
[*.ck]
[?www.ck]
status = exception
apply_to = ck
`)
	require.NoError(t, p.ParseFile("rules.ini", src))
	require.NoError(t, p.Validate())

	exc, ok := p.Lookup("!www.ck")
	require.True(t, ok)
	assert.True(t, exc.IsException())
	assert.Equal(t, tld.StatusException, exc.Status())
	target, hasApply := exc.ApplyTo()
	assert.True(t, hasApply)
	assert.Equal(t, "ck", target)
}

func TestParser_Validate_RejectsApplyToWithoutException(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[ck]
[?www.ck]
apply_to = ck
`)
	require.NoError(t, p.ParseFile("rules.ini", src))
	assert.Error(t, p.Validate())
}

func TestParser_Validate_RejectsApplyToUnknownTarget(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[?www.ck]
status = exception
apply_to = ck
`)
	require.NoError(t, p.ParseFile("rules.ini", src))
	assert.Error(t, p.Validate())
}

func TestParser_Validate_RequiresCategoryOrCountry(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid

[ck]
`)
	require.NoError(t, p.ParseFile("rules.ini", src))
	assert.Error(t, p.Validate())
}

func TestParser_DuplicateSectionIsError(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[uk]
tag/name = first

[uk]
tag/other = second
`)
	err := p.ParseFile("rules.ini", src)
	require.Error(t, err, "a second section for an already-declared rule must be a compile-time error (§3: exactly one rule per distinct segment sequence)")

	uk, ok := p.Lookup("uk")
	require.True(t, ok)
	assert.Len(t, p.order, 1, "the first section's rule must still be the only one recorded")
	name, _ := uk.Tag("name")
	assert.Equal(t, "first", name)
}

func TestParser_WildcardSection(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[ck]
[*.ck]
`)
	require.NoError(t, p.ParseFile("rules.ini", src))

	wc, ok := p.Lookup("*.ck")
	require.True(t, ok)
	assert.True(t, wc.IsWildcard())
	assert.Equal(t, []string{"*", "ck"}, wc.Segments())
}

func TestParser_InvalidSegmentRejected(t *testing.T) {
	p := NewParser()
	src := []byte(`status = valid
tag/category = cctld

[-bad]
`)
	assert.Error(t, p.ParseFile("rules.ini", src))
}

func TestParser_InternationalizedLabelIsPunycodeEncoded(t *testing.T) {
	p := NewParser()
	src := []byte("status = valid\ntag/category = cctld\n\n[xn--caf-dma.ck]\n")
	require.NoError(t, p.ParseFile("rules.ini", src))

	_, ok := p.Lookup("xn--caf-dma.ck")
	require.True(t, ok, "ASCII xn-- form must already be accepted")

	p2 := NewParser()
	src2 := []byte("status = valid\ntag/category = cctld\n\n[café.ck]\n")
	require.NoError(t, p2.ParseFile("rules.ini", src2))

	rule, ok := p2.Lookup("xn--caf-dma.ck")
	require.True(t, ok, "a raw UTF-8 label must be Punycode-encoded to the same xn-- form")
	assert.Equal(t, []string{"xn--caf-dma", "ck"}, rule.Segments())
}
