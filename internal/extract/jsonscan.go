package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	minCandidateLen = 24
	maxCandidateLen = 200_000
	dedupPrefixLen  = 400
)

// contentMarkers gate the parse attempt: a candidate containing none of these
// is store structure, not conversation data, and is not worth decoding.
var contentMarkers = []string{`"text"`, `"content"`, `"prompt"`, `"message"`}

// balancedCandidates scans text left to right and returns substrings spanning
// brace-balanced {...} regions. String literals are tracked with backslash
// escape handling so braces and quotes inside quoted values never affect
// depth. A span cut off by end of input is dropped. The scan resumes past each
// consumed span, or one byte forward when nothing was consumed, so the whole
// pass is a single O(n) sweep.
func balancedCandidates(text string, limit int) []string {
	var out []string
	n := len(text)
	i := 0
	for i < n && len(out) < limit {
		if text[i] != '{' {
			i++
			continue
		}
		start := i
		depth := 0
		inStr := false
		esc := false
		j := i
	scan:
		for j < n {
			ch := text[j]
			if inStr {
				switch {
				case esc:
					esc = false
				case ch == '\\':
					esc = true
				case ch == '"':
					inStr = false
				}
			} else {
				switch ch {
				case '"':
					inStr = true
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						if l := j + 1 - start; l >= minCandidateLen && l <= maxCandidateLen {
							out = append(out, text[start:j+1])
						}
						break scan
					}
				}
			}
			j++
		}
		if j > i {
			i = j + 1
		} else {
			i++
		}
	}
	return out
}

// recoverObjects yields up to limit parsed objects from decoded text,
// deduplicated by candidate prefix so repeated store pages do not double-count.
func recoverObjects(text string, limit int) []*record {
	if limit <= 0 {
		return nil
	}
	var objs []*record
	seen := make(map[string]struct{})
	for _, chunk := range balancedCandidates(text, limit*6) {
		if !hasContentMarker(chunk) {
			continue
		}
		key := prefixOf(chunk, dedupPrefixLen)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		obj, ok := parseRecord([]byte(chunk))
		if !ok {
			continue
		}
		objs = append(objs, obj)
		if len(objs) >= limit {
			break
		}
	}
	return objs
}

// recoverObjectsFromBytes runs the candidate scan under every supported text
// decoding and merges the results. Objects are deduplicated by the prefix of
// their canonical re-serialization, so the same byte range recovered under two
// encodings counts once.
func recoverObjectsFromBytes(raw []byte, limit int) []*record {
	if limit <= 0 {
		return nil
	}
	var out []*record
	seen := make(map[string]struct{})
	for _, text := range decodedTexts(raw) {
		if text == "" {
			continue
		}
		for _, obj := range recoverObjects(text, limit) {
			sig, err := canonicalJSON(obj)
			if err != nil {
				continue
			}
			key := prefixOf(string(sig), dedupPrefixLen)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, obj)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// decodedTexts returns raw decoded as UTF-8 and as UTF-16LE, each lossy:
// undecodable ranges are dropped rather than failing the scan.
func decodedTexts(raw []byte) []string {
	return []string{decodeUTF8(raw), decodeUTF16LE(raw)}
}

func decodeUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "")
}

func decodeUTF16LE(raw []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.String(string(raw))
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(s, "�", "")
}

func hasContentMarker(chunk string) bool {
	for _, m := range contentMarkers {
		if strings.Contains(chunk, m) {
			return true
		}
	}
	return false
}

func prefixOf(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
