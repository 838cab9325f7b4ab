package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	apperrors "centival/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder exploded")
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOutputWrite, apperrors.GetCode(err))

	got, _ := os.ReadFile(path)
	assert.Equal(t, "keep", string(got))
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicMissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "out.txt"), []byte("x"))
	assert.Equal(t, apperrors.CodeOutputWrite, apperrors.GetCode(err))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, Exists(dir))
	assert.NoError(t, EnsureDir(""))
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]any{"a": "<b>"}, "    ")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": \"<b>\"\n}\n", string(b))
}
