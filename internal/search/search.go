package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/sift/internal/index"
)

type Result struct {
	SessionKey    string
	EventID       int
	Mtime         int64
	StartedAt     string
	Source        string
	Project       string
	Cwd           string
	FirstUserText string
	Snippet       string
	Role          string
	Kind          string
	Rank          float64
}

type Options struct {
	Query  string
	Source string // "" = all, "claude_cli", "claude_desktop"
	Role   string // "" = all, "user", "assistant"
	Kind   string // "" = all, "message", "snippet", ...
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	// Deduplicate: keep only the best-ranked result per session
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.SessionKey] {
			continue
		}
		seen[r.SessionKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func filterConditions(opts Options, matchCond string, matchArg any) ([]string, []any) {
	conditions := []string{matchCond}
	args := []any{matchArg}

	if opts.Source != "" {
		conditions = append(conditions, "s.source = ?")
		args = append(args, opts.Source)
	}
	if opts.Role != "" {
		conditions = append(conditions, "e.role = ?")
		args = append(args, opts.Role)
	}
	if opts.Kind != "" {
		conditions = append(conditions, "e.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Since != "" {
		conditions = append(conditions, "s.started_at >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filterConditions(opts, "events_fts MATCH ?", opts.Query)
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			e.session_key,
			e.event_id,
			s.mtime,
			s.started_at,
			s.source,
			s.project,
			s.cwd,
			s.first_user_text,
			snippet(events_fts, 0, '>>>','<<<', '...', 40) as snip,
			e.role,
			e.kind,
			bm25(events_fts, 1.0) as rank
		FROM events_fts
		JOIN events e ON events_fts.rowid = e.rowid
		JOIN sessions s ON e.session_key = s.session_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filterConditions(opts, "e.text LIKE ?", "%"+opts.Query+"%")
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			e.session_key,
			e.event_id,
			s.mtime,
			s.started_at,
			s.source,
			s.project,
			s.cwd,
			s.first_user_text,
			e.text,
			e.role,
			e.kind
		FROM events e
		JOIN sessions s ON e.session_key = s.session_key
		WHERE %s
		ORDER BY s.mtime DESC
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.SessionKey, &r.EventID, &r.Mtime, &r.StartedAt,
			&r.Source, &r.Project, &r.Cwd, &r.FirstUserText,
			&fullText, &r.Role, &r.Kind,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		r.Rank = 0
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.SessionKey, &r.EventID, &r.Mtime, &r.StartedAt,
			&r.Source, &r.Project, &r.Cwd, &r.FirstUserText,
			&r.Snippet, &r.Role, &r.Kind, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one entry per indexed session, most recent first. Used by
// the picker when no query has been typed yet.
func ListAll(db *index.DB, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Raw().Query(`
		SELECT session_key, mtime, started_at, source, project, cwd, first_user_text
		FROM sessions
		ORDER BY mtime DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r := Result{EventID: -1}
		if err := rows.Scan(
			&r.SessionKey, &r.Mtime, &r.StartedAt,
			&r.Source, &r.Project, &r.Cwd, &r.FirstUserText,
		); err != nil {
			return nil, err
		}
		r.Snippet = r.FirstUserText
		results = append(results, r)
	}
	return results, rows.Err()
}
