package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from a text file\nsecond line"), 0o644))

	text, err := Text(path, "txt")
	require.NoError(t, err)
	assert.Equal(t, "hello from a text file\nsecond line", text)
}

func TestTextMarkdownUsesPlainExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0o644))

	text, err := Text(path, "md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", text)
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text("/tmp/whatever.bin", "bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "bin")
}

func TestTextTypeIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upper.txt")
	require.NoError(t, os.WriteFile(path, []byte("upper"), 0o644))

	text, err := Text(path, "  TXT ")
	require.NoError(t, err)
	assert.Equal(t, "upper", text)
}

func TestTextMissingFile(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "missing.txt"), "txt")
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	for _, ft := range []string{"pdf", "txt", "md", "docx", "doc", "xlsx", "xls", "PDF", " txt "} {
		assert.True(t, Supported(ft), "expected %q to be supported", ft)
	}
	for _, ft := range []string{"bin", "exe", "csv", ""} {
		assert.False(t, Supported(ft), "expected %q to be unsupported", ft)
	}
}
