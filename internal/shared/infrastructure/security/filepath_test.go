package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateFilePath("  ")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, char := range forbiddenChars {
			_, err := ValidateFilePath("/tmp/vocab" + char + ".yaml")
			assert.ErrorIs(t, err, ErrForbiddenChar, "character %q", char)
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		result, err := ValidateFilePath("vocabulary.yaml")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("expands home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		result, err := ValidateFilePath("~/.huddle/vocabulary.yaml")
		require.NoError(t, err)

		resolvedHome, _ := filepath.EvalSymlinks(home)
		assert.Contains(t, []string{
			filepath.Join(home, ".huddle", "vocabulary.yaml"),
			filepath.Join(resolvedHome, ".huddle", "vocabulary.yaml"),
		}, result)
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "target.yaml")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(target, link))

		result, err := ValidateFilePath(link)
		require.NoError(t, err)

		expected, _ := filepath.EvalSymlinks(target)
		assert.Equal(t, expected, result)
	})

	t.Run("cleans traversal components", func(t *testing.T) {
		dir := t.TempDir()
		result, err := ValidateFilePath(filepath.Join(dir, "a", "..", "b.ics"))
		require.NoError(t, err)
		assert.Equal(t, "b.ics", filepath.Base(result))
		assert.NotContains(t, result, "..")
	})
}

func TestSafeReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meeting_title: Sync"), 0o600))

	data, err := SafeReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "meeting_title: Sync", string(data))

	_, err = SafeReadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	_, err = SafeReadFile("/tmp/$(whoami)")
	assert.ErrorIs(t, err, ErrForbiddenChar)
}

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exports", "meeting.ics")

	written, err := SafeWriteFile(path, []byte("BEGIN:VCALENDAR"), 0o600)
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(data))

	_, err = SafeWriteFile(path, []byte("BEGIN:VCALENDAR\nVERSION:2.0"), 0o600)
	require.NoError(t, err)
	data, err = os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR\nVERSION:2.0", string(data))

	entries, err := os.ReadDir(filepath.Dir(written))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
