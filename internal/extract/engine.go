// Package extract recovers human-readable conversation events from session
// artifacts without assuming a schema: line-delimited JSONL logs are parsed
// line by line, opaque binary stores are mined for embedded JSON objects and
// readable text runs. Nothing in here returns an error; every failure mode
// degrades to smaller, still well-formed output.
package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

const (
	maxLineBytes = 10 * 1024 * 1024

	maxEventText   = 16384
	maxSnippetText = 4000
	maxRawJSONText = 1000

	firstUserTextCap = 180
	searchChunkCap   = 320

	minRunLen = 24
)

// reconstructionNotice leads every opaque-source event list: the store format
// is binary and the transcript below it is a heuristic reconstruction.
const reconstructionNotice = "Opaque binary store (IndexedDB/LevelDB): showing heuristically recovered JSON/text snippets. This is not a complete transcript."

// readableRunRe matches runs of printable ASCII plus the kana and CJK unified
// ideograph ranges, the same character set the harvester considers readable.
var readableRunRe = regexp.MustCompile(`[ -~\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}]{24,300}`)

// Recover runs the full recovery pipeline over one artifact. It is stateless
// and purely functional: callers may run any number of artifacts concurrently.
func Recover(art Artifact, lim Limits) Result {
	lim = lim.orDefaults()
	if art.Source == SourceDesktop {
		return recoverOpaque(art, lim)
	}
	return recoverLines(art, lim)
}

func newSummary(art Artifact) Summary {
	return Summary{
		ID:      art.ID,
		Path:    art.Path,
		RelPath: art.RelPath,
		Source:  art.Source,
		Mtime:   art.Mtime,
	}
}

func rawProjectOf(art Artifact) string {
	if art.ProjectSlug != "" {
		return art.ProjectSlug
	}
	if art.Source == SourceDesktop {
		return "(desktop)"
	}
	return firstSegment(art.RelPath)
}

// recoverLines handles line-delimited sources: each line is an independent
// JSON record, corrupt lines are skipped, and raw lines keep being counted
// after the event cap so the caller can report how much was left unshown.
func recoverLines(art Artifact, lim Limits) Result {
	res := Result{Summary: newSummary(art)}
	search := searchAccumulator{budget: lim.SearchTextBudget}

	scanner := bufio.NewScanner(bytes.NewReader(art.Data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		res.RawCount++
		if len(res.Events) >= lim.MaxEvents {
			continue
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' || line[len(line)-1] != '}' {
			continue
		}
		obj, ok := parseRecord(line)
		if !ok {
			continue
		}
		res.Events = append(res.Events, lineEvent(obj, lineNum, &res.Summary, &search))
	}

	res.Summary.Project = projectLabel(rawProjectOf(art), res.Summary.Cwd)
	res.Summary.SearchText = search.String()
	return res
}

// lineEvent normalizes one parsed record into an Event, filling the summary's
// first-wins fields along the way.
func lineEvent(obj *record, line int, sum *Summary, search *searchAccumulator) Event {
	ts := recordTimestamp(obj)
	if sum.StartedAt == "" {
		sum.StartedAt = ts
	}
	if sum.Model == "" {
		sum.Model = modelOf(obj)
	}
	if sum.Cwd == "" {
		if v, ok := obj.get("cwd").(string); ok {
			sum.Cwd = v
		}
	}

	typ, _ := obj.get("type").(string)
	role := classifyRole(obj)
	kind := KindEvent
	var text string

	switch typ {
	case "user":
		kind, role = KindMessage, RoleUser
		text = reconstructMessage(obj.get("message"))
	case "assistant":
		kind, role = KindMessage, RoleAssistant
		text = reconstructMessage(obj.get("message"))
	case "queue-operation":
		kind, role = KindQueue, RoleSystem
		text = strings.TrimSpace(fieldString(obj.get("operation")) + "\n" + fieldString(obj.get("content")))
	case "progress":
		kind, role = KindProgress, RoleSystem
		text = progressText(obj)
	case "system":
		kind, role = KindSystem, RoleSystem
		text = compactJSON(obj, 0)
	default:
		text = reconstructMessage(obj.get("message"))
		if text == "" {
			text = strings.TrimSpace(strings.Join(harvestText(obj), "\n"))
		}
	}
	if text == "" {
		text = compactJSON(obj, maxRawJSONText)
	}

	if parts := harvestText(obj); len(parts) > 0 {
		merged := flatten(strings.TrimSpace(strings.Join(parts, " ")))
		if role == RoleUser && sum.FirstUserText == "" {
			sum.FirstUserText = truncateRunes(merged, firstUserTextCap)
		}
		search.Add(truncateRunes(merged, searchChunkCap))
	}

	return Event{Timestamp: ts, Kind: kind, Role: role, Text: capText(kind, text), Line: line}
}

// modelOf looks for a model name on the record itself or its nested message.
func modelOf(obj *record) string {
	for _, src := range []any{obj, obj.get("message")} {
		m, ok := src.(*record)
		if !ok {
			continue
		}
		for _, k := range []string{"model", "model_name", "modelName"} {
			if v, ok := m.get(k).(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

// recoverOpaque handles opaque binary sources through the fallback chain:
// structured object recovery across both text decodings, then readable-run
// extraction, and in the worst case the notice event alone.
func recoverOpaque(art Artifact, lim Limits) Result {
	res := Result{Summary: newSummary(art)}
	search := searchAccumulator{budget: lim.SearchTextBudget}

	res.Events = append(res.Events, Event{Kind: KindNotice, Role: RoleSystem, Text: reconstructionNotice})

	objs := recoverObjectsFromBytes(art.Data, lim.MaxObjects)
	if len(objs) > 0 {
		for _, obj := range objs {
			if len(res.Events) >= lim.MaxEvents {
				break
			}
			text := strings.TrimSpace(strings.Join(harvestText(obj), "\n"))
			if text == "" {
				continue
			}
			ts := recordTimestamp(obj)
			if res.Summary.StartedAt == "" {
				res.Summary.StartedAt = ts
			}
			role := classifyRole(obj)
			merged := flatten(text)
			if role == RoleUser && res.Summary.FirstUserText == "" {
				res.Summary.FirstUserText = truncateRunes(merged, firstUserTextCap)
			}
			search.Add(truncateRunes(merged, searchChunkCap))
			res.Events = append(res.Events, Event{
				Timestamp: ts,
				Kind:      KindSnippet,
				Role:      role,
				Text:      capText(KindSnippet, text),
			})
		}
	} else {
		for _, run := range readableRuns(art.Data, lim.MaxEvents) {
			if len(res.Events) >= lim.MaxEvents {
				break
			}
			search.Add(truncateRunes(flatten(run), searchChunkCap))
			res.Events = append(res.Events, Event{
				Kind: KindSnippet,
				Role: RoleSystem,
				Text: capText(KindSnippet, run),
			})
		}
	}

	if res.Summary.FirstUserText == "" && len(res.Events) > 1 {
		res.Summary.FirstUserText = truncateRunes(flatten(res.Events[1].Text), firstUserTextCap)
	}
	res.Summary.Project = projectLabel(rawProjectOf(art), res.Summary.Cwd)
	res.Summary.SearchText = search.String()
	res.RawCount = len(res.Events)
	return res
}

// readableRuns pulls printable character runs out of raw under both text
// decodings, skipping store-structure noise and deduplicating by prefix.
func readableRuns(raw []byte, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var runs []string
	seen := make(map[string]struct{})
	for _, text := range decodedTexts(raw) {
		if text == "" {
			continue
		}
		for _, m := range readableRunRe.FindAllString(text, limit*2) {
			s := strings.TrimSpace(m)
			if len(s) < minRunLen {
				continue
			}
			if strings.Contains(s, "IndexedDB") || strings.Contains(s, "LEVELDB") {
				continue
			}
			key := prefixOf(s, 160)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			runs = append(runs, s)
			if len(runs) >= limit {
				return runs
			}
		}
	}
	return runs
}

// searchAccumulator collects preview chunks for the summary's search text,
// stopping once the running joined length exceeds the budget.
type searchAccumulator struct {
	budget int
	chunks []string
	length int
}

func (a *searchAccumulator) Add(chunk string) {
	if chunk == "" || a.length >= a.budget {
		return
	}
	if len(a.chunks) > 0 {
		a.length++
	}
	a.length += len(chunk)
	a.chunks = append(a.chunks, chunk)
}

func (a *searchAccumulator) String() string {
	return strings.Join(a.chunks, " ")
}

func capText(kind Kind, text string) string {
	limit := maxEventText
	if kind == KindSnippet {
		limit = maxSnippetText
	}
	return truncateRunes(text, limit)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func firstSegment(rel string) string {
	if i := strings.IndexAny(rel, `/\`); i > 0 {
		return rel[:i]
	}
	return ""
}
