package extract

import "time"

// Source identifies the artifact family a recovery run reads from.
type Source string

const (
	// SourceCLI is a line-delimited JSONL session log (one record per line).
	SourceCLI Source = "claude_cli"
	// SourceDesktop is an opaque IndexedDB/LevelDB page file that may contain
	// embedded JSON or readable text fragments.
	SourceDesktop Source = "claude_desktop"
)

// Kind categorizes a normalized event.
type Kind string

const (
	KindMessage  Kind = "message"
	KindQueue    Kind = "queue"
	KindProgress Kind = "progress"
	KindSystem   Kind = "system"
	KindSnippet  Kind = "snippet"
	KindNotice   Kind = "notice"
	KindEvent    Kind = "event"
)

// Role is the conversation role inferred for a record.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleDeveloper Role = "developer"
	RoleSystem    Role = "system"
)

// Artifact is one session file's content as handed over by the caller. Data is
// already capped at the configured byte ceiling; the engine does no I/O of its
// own and never mutates the buffer.
type Artifact struct {
	ID          string
	Path        string
	RelPath     string
	Source      Source
	ProjectSlug string
	Mtime       time.Time
	Data        []byte
}

// Event is one normalized conversation event. Timestamp is the canonical
// local-time form, empty when unknown. Line is the source line number for
// line-delimited artifacts (0 for opaque sources).
type Event struct {
	Timestamp string
	Kind      Kind
	Role      Role
	Text      string
	Line      int
}

// Summary is the per-artifact session summary. Text fields are first-wins
// fills: once set they are never overwritten during the run.
type Summary struct {
	ID            string
	Path          string
	RelPath       string
	Source        Source
	Project       string
	Mtime         time.Time
	StartedAt     string
	Cwd           string
	Model         string
	FirstUserText string
	SearchText    string
}

// Result is the complete outcome of one recovery run. RawCount is the number
// of raw units scanned: lines for line-delimited sources (counted even past
// the event cap), emitted events for opaque sources.
type Result struct {
	Summary  Summary
	Events   []Event
	RawCount int
}

// Limits bounds a recovery run. All fields are explicit; zero values fall back
// to the defaults so a partially filled config still yields bounded work.
type Limits struct {
	MaxScanBytes     int
	MaxEvents        int
	MaxObjects       int
	SearchTextBudget int
}

func DefaultLimits() Limits {
	return Limits{
		MaxScanBytes:     2 * 1024 * 1024,
		MaxEvents:        4000,
		MaxObjects:       120,
		SearchTextBudget: 2500,
	}
}

func (l Limits) orDefaults() Limits {
	d := DefaultLimits()
	if l.MaxScanBytes <= 0 {
		l.MaxScanBytes = d.MaxScanBytes
	}
	if l.MaxEvents <= 0 {
		l.MaxEvents = d.MaxEvents
	}
	if l.MaxObjects <= 0 {
		l.MaxObjects = d.MaxObjects
	}
	if l.SearchTextBudget <= 0 {
		l.SearchTextBudget = d.SearchTextBudget
	}
	return l
}
