package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/tld"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	p := NewParser()
	require.NoError(t, p.ParseFile("rules.ini", []byte(src)))
	require.NoError(t, p.Validate())
	return p.Finish()
}

func TestEmit_TopLevelRange(t *testing.T) {
	doc := mustParse(t, `status = valid
tag/category = cctld

[uk]
[us]
[co.uk]
`)
	bin, err := Emit(doc.Rules)
	require.NoError(t, err)
	assert.NotEmpty(t, bin)
	assert.LessOrEqual(t, len(bin), tld.MaxFileSize)
}

func TestEmit_WildcardSortsFirstAmongSiblings(t *testing.T) {
	doc := mustParse(t, `status = valid
tag/category = cctld

[ck]
[*.ck]
[?www.ck]
status = exception
apply_to = ck
`)
	bin, err := Emit(doc.Rules)
	require.NoError(t, err)

	_, err = tld.LoadReader(bytes.NewReader(bin))
	require.NoError(t, err)
	t.Cleanup(tld.FreeLoaded)

	res, info := tld.Lookup("test.ck")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "test.ck", info.TLD)

	res, info = tld.Lookup("www.ck")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "ck", info.TLD)
}

func TestEmit_MissingParentRejected(t *testing.T) {
	p := NewParser()
	require.NoError(t, p.ParseFile("rules.ini", []byte(`status = valid
tag/category = cctld

[co.uk]
`)))
	doc := p.Finish()
	_, err := Emit(doc.Rules)
	assert.Error(t, err)
}

func TestEmit_DeepestLevelFitsByte(t *testing.T) {
	doc := mustParse(t, `status = valid
tag/category = cctld

[us]
[ak.us]
[k12.ak.us]
`)
	bin, err := Emit(doc.Rules)
	require.NoError(t, err)
	assert.NotEmpty(t, bin)
}
