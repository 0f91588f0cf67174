package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/sift/internal/extract"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanCLIRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj-a", "s1.jsonl"), "{}\n")
	writeFile(t, filepath.Join(root, "proj-a", "notes.txt"), "skip")
	writeFile(t, filepath.Join(root, "proj-a", "sessions-index.jsonl"), "{}\n")
	writeFile(t, filepath.Join(root, "proj-a", "subagents", "sub.jsonl"), "{}\n")
	writeFile(t, filepath.Join(root, "proj-b", "s2.jsonl"), "{}\n")

	files, err := ScanRoots(root, "")
	require.NoError(t, err)
	require.Len(t, files, 2)
	var names []string
	for _, f := range files {
		assert.Equal(t, extract.SourceCLI, f.Source)
		assert.Equal(t, root, f.Root)
		names = append(names, filepath.Base(f.Path))
	}
	assert.ElementsMatch(t, []string{"s1.jsonl", "s2.jsonl"}, names)
}

func TestScanDesktopRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "000001.ldb"), "x")
	writeFile(t, filepath.Join(root, "000002.log"), "x")
	writeFile(t, filepath.Join(root, "MANIFEST-000003"), "x")
	writeFile(t, filepath.Join(root, "CURRENT"), "x")
	writeFile(t, filepath.Join(root, "LOCK"), "")

	files, err := ScanRoots("", root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	var names []string
	for _, f := range files {
		assert.Equal(t, extract.SourceDesktop, f.Source)
		names = append(names, filepath.Base(f.Path))
	}
	assert.ElementsMatch(t, []string{"000001.ldb", "000002.log", "MANIFEST-000003"}, names)
}

func TestScanMissingRootIgnored(t *testing.T) {
	files, err := ScanRoots(filepath.Join(t.TempDir(), "absent"), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanOrdersByMtimeDescending(t *testing.T) {
	root := t.TempDir()
	older := filepath.Join(root, "p", "old.jsonl")
	newer := filepath.Join(root, "p", "new.jsonl")
	writeFile(t, older, "{}\n")
	writeFile(t, newer, "{}\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := ScanRoots(root, "")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer, files[0].Path)
	assert.Equal(t, older, files[1].Path)
}

func TestWithinRoot(t *testing.T) {
	root := t.TempDir()
	assert.True(t, WithinRoot(root, filepath.Join(root, "a", "b.jsonl")))
	assert.True(t, WithinRoot(root, root))
	assert.False(t, WithinRoot(root, filepath.Join(root, "..", "escape.jsonl")))
	assert.False(t, WithinRoot(root, filepath.Dir(root)))
	assert.False(t, WithinRoot("", "/anything"))
}

func TestReadArtifactCLI(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "proj-slug", "abc123.jsonl")
	writeFile(t, path, `{"type":"user"}`+"\n")

	files, err := ScanRoots(root, "")
	require.NoError(t, err)
	require.Len(t, files, 1)

	art, err := ReadArtifact(files[0], 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "abc123", art.ID)
	assert.Equal(t, path, art.Path)
	assert.Equal(t, filepath.Join("proj-slug", "abc123.jsonl"), art.RelPath)
	assert.Equal(t, "proj-slug", art.ProjectSlug)
	assert.Equal(t, extract.SourceCLI, art.Source)
	assert.Equal(t, `{"type":"user"}`+"\n", string(art.Data))
}

func TestReadArtifactDesktopTruncates(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "000001.ldb")
	writeFile(t, path, "0123456789")

	files, err := ScanRoots("", root)
	require.NoError(t, err)
	require.Len(t, files, 1)

	art, err := ReadArtifact(files[0], 4)
	require.NoError(t, err)
	assert.Equal(t, "000001.ldb", art.ID)
	assert.Empty(t, art.ProjectSlug)
	assert.Equal(t, "0123", string(art.Data))
}
