package index

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/sift/internal/extract"
	"github.com/Zuo-Peng/sift/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

func IndexAll(db *DB, cliRoot, desktopRoot string, lim extract.Limits) (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoots(cliRoot, desktopRoot)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which sessions we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		art, err := scan.ReadArtifact(fi, lim.MaxScanBytes)
		if err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: read %s: %v\n", fi.Path, err)
			continue
		}

		result := extract.Recover(art, lim)
		if len(result.Events) == 0 {
			continue
		}

		key := SessionKey(art.Source, art.RelPath)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		if err := indexSession(db, key, fi.Size, result); err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: index %s: %v\n", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	// prune sessions whose files no longer exist
	pruned, err := pruneSessions(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// SessionKey identifies a session across re-indexes. Relative paths are
// stable across machines sharing a synced root; absolute paths are not.
func SessionKey(source extract.Source, relPath string) string {
	return string(source) + ":" + relPath
}

func needsUpdate(db *DB, sessionKey string, mtime, size int64) (bool, error) {
	info, err := db.GetSessionInfo(sessionKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new session
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexSession(db *DB, key string, size int64, result extract.Result) error {
	// delete old data first
	if err := db.DeleteSession(key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sum := result.Summary
	_, err = tx.Exec(
		`INSERT INTO sessions (session_key, source, file_path, relative_path, project, cwd, model, started_at, first_user_text, search_text, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		string(sum.Source),
		sum.Path,
		sum.RelPath,
		sum.Project,
		sum.Cwd,
		sum.Model,
		sum.StartedAt,
		sum.FirstUserText,
		sum.SearchText,
		sum.Mtime.Unix(),
		size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO events (session_key, event_id, ts, kind, role, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, ev := range result.Events {
		_, err := stmt.Exec(
			key,
			i,
			ev.Timestamp,
			string(ev.Kind),
			string(ev.Role),
			ev.Text,
			ev.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneSessions(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllSessionKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteSession(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
