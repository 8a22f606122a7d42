package markdown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir string, n string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_"+n+".md"), []byte(content), 0o644))
}

func TestMergePagesNumericOrder(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "10", "ten")
	writePage(t, dir, "2", "two")
	writePage(t, dir, "1", "one")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	merged, err := MergePages(dir)
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo\n\nten", merged, "page 10 sorts after page 2")
}

func TestMergePagesEmptyDir(t *testing.T) {
	_, err := MergePages(t.TempDir())
	assert.Error(t, err)
}

func TestCleanStripsArtifacts(t *testing.T) {
	in := "# Registo\n\n\n\nTexto com nbsp   \n---------\n3 / 11\npage 4\n\n\nFim\n"
	out := Clean(in)
	assert.Equal(t, "# Registo\n\nTexto com nbsp\n\nFim\n", out)
}

func TestCleanIdempotent(t *testing.T) {
	in := "a\n\n\n---\nb\n2\n"
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}

func TestCleanKeepsShortDashes(t *testing.T) {
	// "--" is content, only 3+ dash lines are page breaks
	out := Clean("a\n--\nb\n")
	assert.Equal(t, "a\n--\nb\n", out)
}

func TestMergeSubject(t *testing.T) {
	outputDir := t.TempDir()
	mdDir := filepath.Join(outputDir, "2305", "2305_nota_alta", "markdown")
	require.NoError(t, os.MkdirAll(mdDir, 0o755))
	writePage(t, mdDir, "1", "primeira página\n")
	writePage(t, mdDir, "2", "segunda página\n")

	path, err := MergeSubject(outputDir, "2305")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "2305", "2305_merged.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "primeira página\n\nsegunda página\n", string(data))
}

func TestMergeSubjectNoMarkdown(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "2305"), 0o755))

	_, err := MergeSubject(outputDir, "2305")
	assert.Error(t, err)
}
