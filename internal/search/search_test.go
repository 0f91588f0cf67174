package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/sift/internal/extract"
	"github.com/Zuo-Peng/sift/internal/index"
)

func seedDB(t *testing.T, sessions map[string]string) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "sift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	for name, content := range sessions {
		path := filepath.Join(root, "proj", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	_, err = index.IndexAll(db, root, "", extract.DefaultLimits())
	require.NoError(t, err)
	return db
}

func userLine(ts, text string) string {
	return `{"type":"user","timestamp":"` + ts + `","message":{"role":"user","content":"` + text + `"}}` + "\n"
}

func assistantLine(ts, text string) string {
	return `{"type":"assistant","timestamp":"` + ts + `","message":{"role":"assistant","content":"` + text + `"}}` + "\n"
}

func TestSearchFTS(t *testing.T) {
	db := seedDB(t, map[string]string{
		"a.jsonl": userLine("2024-05-01T10:00:00", "the websocket handshake fails") +
			assistantLine("2024-05-01T10:00:05", "checking the upgrade header"),
		"b.jsonl": userLine("2024-05-02T09:00:00", "rename the config file"),
	})

	results, err := Search(db, Options{Query: "websocket"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, ">>>websocket<<<")
	assert.Equal(t, "user", results[0].Role)
	assert.Equal(t, "claude_cli", results[0].Source)
}

func TestSearchDedupPerSession(t *testing.T) {
	db := seedDB(t, map[string]string{
		"a.jsonl": userLine("2024-05-01T10:00:00", "retry logic everywhere") +
			assistantLine("2024-05-01T10:00:05", "the retry loop needs a cap") +
			userLine("2024-05-01T10:01:00", "retry again please"),
	})

	results, err := Search(db, Options{Query: "retry"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchRoleFilter(t *testing.T) {
	db := seedDB(t, map[string]string{
		"a.jsonl": userLine("2024-05-01T10:00:00", "deploy pipeline broken") +
			assistantLine("2024-05-01T10:00:05", "the deploy script misses a flag"),
	})

	results, err := Search(db, Options{Query: "deploy", Role: "assistant"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "assistant", results[0].Role)
}

func TestSearchSinceFilter(t *testing.T) {
	db := seedDB(t, map[string]string{
		"old.jsonl": userLine("2023-01-01T10:00:00", "ancient refactor notes"),
		"new.jsonl": userLine("2024-06-01T10:00:00", "fresh refactor notes"),
	})

	results, err := Search(db, Options{Query: "refactor", Since: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2024-06-01T10:00:00", results[0].StartedAt)
}

func TestSearchCJKFallback(t *testing.T) {
	db := seedDB(t, map[string]string{
		"a.jsonl": userLine("2024-05-01T10:00:00", "修复登录问题"),
	})

	results, err := Search(db, Options{Query: "登录"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, ">>>登录<<<")
}

func TestListAll(t *testing.T) {
	db := seedDB(t, map[string]string{
		"a.jsonl": userLine("2024-05-01T10:00:00", "first session opener"),
		"b.jsonl": userLine("2024-05-02T09:00:00", "second session opener"),
	})

	results, err := ListAll(db, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, -1, r.EventID)
		assert.NotEmpty(t, r.FirstUserText)
		assert.Equal(t, r.FirstUserText, r.Snippet)
	}
}

func TestMakeSnippet(t *testing.T) {
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa needle bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	s := makeSnippet(long, "needle", 10)
	assert.Contains(t, s, ">>>needle<<<")
	assert.True(t, len(s) < len(long)+12)

	assert.Equal(t, "short text", makeSnippet("short text", "absent", 30))
}
