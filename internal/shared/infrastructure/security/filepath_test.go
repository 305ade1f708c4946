package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := CleanPath("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, char := range forbiddenChars {
			_, err := CleanPath("/tmp/ordo" + char + "config.toml")
			require.Error(t, err, "expected error for %q", char)
			assert.Contains(t, err.Error(), "forbidden character")
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		result, err := CleanPath("ordo.toml")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		dir := t.TempDir()
		real := filepath.Join(dir, "real.toml")
		require.NoError(t, os.WriteFile(real, []byte("page_size = 5"), 0o600))
		link := filepath.Join(dir, "link.toml")
		require.NoError(t, os.Symlink(real, link))

		result, err := CleanPath(link)
		require.NoError(t, err)

		expected, _ := filepath.EvalSymlinks(real)
		assert.Equal(t, expected, result)
	})

	t.Run("keeps missing files cleaned", func(t *testing.T) {
		dir := t.TempDir()
		result, err := CleanPath(filepath.Join(dir, "sub", "..", "missing.toml"))
		require.NoError(t, err)
		assert.Equal(t, "missing.toml", filepath.Base(result))
		assert.NotContains(t, result, "..")
	})
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ordo.toml")
	require.NoError(t, os.WriteFile(path, []byte("store = \"sqlite\""), 0o600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "store = \"sqlite\"", string(data))

	_, err = ReadFile(path + ";rm")
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(dir, "missing.toml"))
	assert.True(t, os.IsNotExist(err))
}
