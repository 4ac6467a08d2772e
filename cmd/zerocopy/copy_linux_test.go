//go:build linux

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(src, []byte("zero-copy payload"), 0o644))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	out, err := executeRoot(t, "-q", "copy", src, outDir)
	require.NoError(t, err)
	assert.NotContains(t, out, "blake3")

	got, err := os.ReadFile(filepath.Join(outDir, "src.bin"))
	require.NoError(t, err)
	assert.Equal(t, "zero-copy payload", string(got))
}

func TestCopyCommandVerify(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("checked"), 0o644))

	out, err := executeRoot(t, "copy", "--verify", src, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "blake3 ")
	assert.Contains(t, out, dst)
}

func TestCopyCommandMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := executeRoot(t, "copy", filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}
