package compiler

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/tld"
)

func TestCompileDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "rules/core.ini", []byte(`status = valid
tag/category = cctld

[uk]
[co.uk]
`), 0o644))

	result, err := CompileDir(fsys, Options{SourceDir: "rules"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NumRules)
	assert.NotEmpty(t, result.Binary)

	_, err = tld.LoadReader(bytes.NewReader(result.Binary))
	require.NoError(t, err)
	t.Cleanup(tld.FreeLoaded)

	res, info := tld.Lookup("example.co.uk")
	assert.Equal(t, tld.Success, res)
	assert.Equal(t, "co.uk", info.TLD)
}

func TestCompileDir_MultipleFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "rules/a.ini", []byte("status = valid\ntag/category = cctld\n\n[uk]\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "rules/b.ini", []byte("status = valid\ntag/category = cctld\n\n[co.uk]\n"), 0o644))

	result, err := CompileDir(fsys, Options{SourceDir: "rules"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NumRules)
}

func TestCompileDir_NoSources(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := CompileDir(fsys, Options{SourceDir: "empty"})
	assert.Error(t, err)
}

func TestCompileDir_InvalidRuleSetFailsValidation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "rules/core.ini", []byte(`status = valid

[uk]
`), 0o644))

	_, err := CompileDir(fsys, Options{SourceDir: "rules"})
	assert.Error(t, err)
}
