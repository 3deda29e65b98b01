package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSourceRetriever(t *testing.T) {
	src := bytes.NewBufferString("[ac]\n")
	m := mockSourceRetriever{Release: "abc123", Source: src}

	tag, err := m.GetLatestReleaseTag()
	require.NoError(t, err)
	assert.Equal(t, "abc123", tag)

	r, err := m.GetSource("abc123")
	require.NoError(t, err)
	got := make([]byte, src.Len())
	_, err = r.Read(got)
	require.NoError(t, err)
	assert.Equal(t, "[ac]\n", string(got))
}