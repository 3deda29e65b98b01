package tld_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/globalsign/tldrules/internal/compiler"
	"github.com/globalsign/tldrules/tld"
)

// loadTestRules compiles testdata/rules/core.ini and makes it the
// process-wide loaded rule set for the duration of the calling test.
func loadTestRules(t *testing.T) {
	t.Helper()

	src, err := os.ReadFile("../testdata/rules/core.ini")
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "rules/core.ini", src, 0o644))

	result, err := compiler.CompileDir(fsys, compiler.Options{SourceDir: "rules"})
	require.NoError(t, err)

	_, err = tld.LoadReader(bytes.NewReader(result.Binary))
	require.NoError(t, err)

	t.Cleanup(tld.FreeLoaded)
}