package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cliArtifact(data string) Artifact {
	return Artifact{
		ID:      "abc123",
		Path:    "/roots/proj-slug/abc123.jsonl",
		RelPath: "proj-slug/abc123.jsonl",
		Source:  SourceCLI,
		Mtime:   time.Unix(1700000000, 0),
		Data:    []byte(data),
	}
}

func desktopArtifact(data []byte) Artifact {
	return Artifact{
		ID:      "000123.ldb",
		Path:    "/roots/db/000123.ldb",
		RelPath: "db/000123.ldb",
		Source:  SourceDesktop,
		Mtime:   time.Unix(1700000000, 0),
		Data:    data,
	}
}

func TestRecoverLinesBasicFlow(t *testing.T) {
	lines := strings.Join([]string{
		`{"type":"system","timestamp":1700000100,"cwd":"/mnt/c/Users/me/proj","model":"sonnet-4"}`,
		`not json at all`,
		`{"type":"user","timestamp":1700000200,"message":{"role":"user","content":"please fix the bug"}}`,
		`{"type":"assistant","timestamp":1700000300,"message":{"role":"assistant","content":[{"type":"text","text":"done"}]}}`,
		``,
		`{"type":"queue-operation","operation":"enqueue","content":"task body"}`,
	}, "\n")

	res := Recover(cliArtifact(lines), DefaultLimits())

	assert.Equal(t, 6, res.RawCount)
	require.Len(t, res.Events, 4)

	assert.Equal(t, KindSystem, res.Events[0].Kind)
	assert.Equal(t, RoleSystem, res.Events[0].Role)
	assert.Equal(t, 1, res.Events[0].Line)

	assert.Equal(t, KindMessage, res.Events[1].Kind)
	assert.Equal(t, RoleUser, res.Events[1].Role)
	assert.Equal(t, "please fix the bug", res.Events[1].Text)
	assert.Equal(t, 3, res.Events[1].Line)

	assert.Equal(t, KindMessage, res.Events[2].Kind)
	assert.Equal(t, RoleAssistant, res.Events[2].Role)
	assert.Equal(t, "done", res.Events[2].Text)

	assert.Equal(t, KindQueue, res.Events[3].Kind)
	assert.Equal(t, "enqueue\ntask body", res.Events[3].Text)

	sum := res.Summary
	assert.Equal(t, "abc123", sum.ID)
	assert.Equal(t, normalizeTimestamp(float64(1700000100)), sum.StartedAt)
	assert.Equal(t, "sonnet-4", sum.Model)
	assert.Equal(t, "/mnt/c/Users/me/proj", sum.Cwd)
	assert.Equal(t, `C:\Users\me\proj`, sum.Project)
	assert.Equal(t, "please fix the bug", sum.FirstUserText)
	assert.Contains(t, sum.SearchText, "please fix the bug")
}

func TestRecoverLinesProjectFromSlugWithoutCwd(t *testing.T) {
	res := Recover(cliArtifact(`{"type":"user","message":{"role":"user","content":"hi there everyone"}}`), DefaultLimits())
	// No cwd captured: the label comes from the slug in the relative path.
	assert.Equal(t, `proj\slug`, res.Summary.Project)
}

func TestRecoverLinesFirstUserTextNeverOverwritten(t *testing.T) {
	lines := `{"type":"user","message":{"role":"user","content":"first question"}}` + "\n" +
		`{"type":"user","message":{"role":"user","content":"second question"}}`
	res := Recover(cliArtifact(lines), DefaultLimits())
	assert.Equal(t, "first question", res.Summary.FirstUserText)
}

func TestRecoverLinesEventCapKeepsCountingRawLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(`{"type":"user","message":{"role":"user","content":"line body text"}}` + "\n")
	}
	lim := DefaultLimits()
	lim.MaxEvents = 10

	res := Recover(cliArtifact(b.String()), lim)
	assert.Len(t, res.Events, 10)
	assert.Equal(t, 50, res.RawCount)
}

func TestRecoverLinesUnknownTypeFallsBack(t *testing.T) {
	res := Recover(cliArtifact(`{"type":"summary","summary":"session about parsers"}`), DefaultLimits())
	require.Len(t, res.Events, 1)
	assert.Equal(t, KindEvent, res.Events[0].Kind)
	assert.Equal(t, "session about parsers", res.Events[0].Text)
}

func TestRecoverLinesRawJSONFallbackText(t *testing.T) {
	// Harvestable text exists nowhere, so the event carries compact JSON.
	res := Recover(cliArtifact(`{"type":"marker","count":3,"flag":true}`), DefaultLimits())
	require.Len(t, res.Events, 1)
	assert.Equal(t, `{"type":"marker","count":3,"flag":true}`, res.Events[0].Text)
}

func TestRecoverOpaqueEmbeddedObjects(t *testing.T) {
	noise := []byte{0x00, 0x17, 0xfe, 0x81, 0x03}
	var data []byte
	data = append(data, noise...)
	data = append(data, []byte(`{"type":"user","timestamp":1700000000,"content":"recovered desktop question"}`)...)
	data = append(data, noise...)
	data = append(data, []byte(`{"sender":"claude","text":"recovered desktop answer body"}`)...)
	data = append(data, noise...)

	res := Recover(desktopArtifact(data), DefaultLimits())

	require.GreaterOrEqual(t, len(res.Events), 3)
	assert.Equal(t, KindNotice, res.Events[0].Kind)

	assert.Equal(t, KindSnippet, res.Events[1].Kind)
	assert.Equal(t, RoleUser, res.Events[1].Role)
	assert.Equal(t, "recovered desktop question", res.Events[1].Text)
	assert.Equal(t, normalizeTimestamp(float64(1700000000)), res.Events[1].Timestamp)

	assert.Equal(t, RoleAssistant, res.Events[2].Role)
	assert.Equal(t, "recovered desktop answer body", res.Events[2].Text)

	assert.Equal(t, "recovered desktop question", res.Summary.FirstUserText)
	assert.Equal(t, len(res.Events), res.RawCount)
	assert.Equal(t, "(desktop)", res.Summary.Project)
}

func TestRecoverOpaqueReadableRunFallback(t *testing.T) {
	noise := []byte{0x00, 0xff, 0x02, 0xfe}
	var data []byte
	data = append(data, noise...)
	data = append(data, []byte("a readable fragment of conversation text here")...)
	data = append(data, noise...)

	res := Recover(desktopArtifact(data), DefaultLimits())

	require.GreaterOrEqual(t, len(res.Events), 2)
	assert.Equal(t, KindNotice, res.Events[0].Kind)
	assert.Equal(t, KindSnippet, res.Events[1].Kind)
	assert.Equal(t, RoleSystem, res.Events[1].Role)
	assert.Contains(t, res.Events[1].Text, "readable fragment")
	// Fallback snippets still seed the preview.
	assert.Contains(t, res.Summary.FirstUserText, "readable fragment")
}

func TestRecoverOpaqueRandomBytesNeverPanics(t *testing.T) {
	// Deterministic pseudo-random garbage.
	data := make([]byte, 64*1024)
	state := uint32(2463534242)
	for i := range data {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		data[i] = byte(state)
	}

	res := Recover(desktopArtifact(data), DefaultLimits())

	require.NotEmpty(t, res.Events)
	assert.Equal(t, KindNotice, res.Events[0].Kind)
	assert.LessOrEqual(t, len(res.Events), DefaultLimits().MaxEvents)
	assert.Equal(t, len(res.Events), res.RawCount)
}

func TestRecoverOpaqueEventCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(`{"text":"distinct snippet body `)
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(`"} `)
	}
	lim := DefaultLimits()
	lim.MaxEvents = 5
	lim.MaxObjects = 100

	res := Recover(desktopArtifact([]byte(b.String())), lim)
	assert.Len(t, res.Events, 5)
}

func TestRecoverSearchTextBudget(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString(`{"type":"user","message":{"role":"user","content":"` + strings.Repeat("word ", 60) + `"}}` + "\n")
	}
	lim := DefaultLimits()
	lim.SearchTextBudget = 500

	res := Recover(cliArtifact(b.String()), lim)
	// One chunk may straddle the boundary, then accumulation stops.
	assert.LessOrEqual(t, len(res.Summary.SearchText), 500+searchChunkCap+1)
}

func TestRecoverZeroLimitsStayBounded(t *testing.T) {
	res := Recover(cliArtifact(`{"type":"user","message":{"role":"user","content":"still works fine"}}`), Limits{})
	require.Len(t, res.Events, 1)
	assert.Equal(t, "still works fine", res.Events[0].Text)
}

func TestRecoverEmptyArtifacts(t *testing.T) {
	res := Recover(cliArtifact(""), DefaultLimits())
	assert.Empty(t, res.Events)
	assert.Zero(t, res.RawCount)

	res = Recover(desktopArtifact(nil), DefaultLimits())
	require.Len(t, res.Events, 1)
	assert.Equal(t, KindNotice, res.Events[0].Kind)
}
