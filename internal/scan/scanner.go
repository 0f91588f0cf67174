// Package scan discovers session artifacts under the configured roots
// and loads them into memory for recovery.
package scan

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Zuo-Peng/sift/internal/extract"
)

type FileInfo struct {
	Path   string
	Root   string
	Source extract.Source
	Mtime  int64
	Size   int64
}

func ScanRoots(cliRoot, desktopRoot string) ([]FileInfo, error) {
	var files []FileInfo

	if cliRoot != "" {
		cf, err := scanCLI(cliRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, cf...)
	}

	if desktopRoot != "" {
		df, err := scanDesktop(desktopRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, df...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Mtime > files[j].Mtime
	})
	return files, nil
}

func scanCLI(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if filepath.Base(path) == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if strings.Contains(filepath.Base(path), "sessions-index") {
			return nil
		}
		files = append(files, FileInfo{
			Path:   path,
			Root:   root,
			Source: extract.SourceCLI,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}

// Desktop stores need the .ldb/.log tables plus the MANIFEST files; other
// LevelDB bookkeeping files (CURRENT, LOCK) never hold conversation data.
func isDesktopArtifact(base string) bool {
	switch filepath.Ext(base) {
	case ".ldb", ".log":
		return true
	}
	return strings.HasPrefix(base, "MANIFEST-")
}

func scanDesktop(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !isDesktopArtifact(filepath.Base(path)) {
			return nil
		}
		files = append(files, FileInfo{
			Path:   path,
			Root:   root,
			Source: extract.SourceDesktop,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}

// WithinRoot reports whether path resolves to a location under root. Both
// sides are made absolute and cleaned before comparison so ".." segments
// cannot escape.
func WithinRoot(root, path string) bool {
	if root == "" {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ReadArtifact loads at most maxBytes of the file and wraps it as an
// extract.Artifact. Oversized desktop blobs are truncated rather than
// rejected; the recovery pass works on whatever prefix is available.
func ReadArtifact(fi FileInfo, maxBytes int) (extract.Artifact, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return extract.Artifact{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)))
	if err != nil {
		return extract.Artifact{}, err
	}

	rel, err := filepath.Rel(fi.Root, fi.Path)
	if err != nil {
		rel = filepath.Base(fi.Path)
	}

	base := filepath.Base(fi.Path)
	id := base
	if fi.Source == extract.SourceCLI {
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	art := extract.Artifact{
		ID:      id,
		Path:    fi.Path,
		RelPath: rel,
		Source:  fi.Source,
		Mtime:   time.Unix(fi.Mtime, 0),
		Data:    data,
	}
	if fi.Source == extract.SourceCLI {
		if i := strings.IndexByte(rel, filepath.Separator); i > 0 {
			art.ProjectSlug = rel[:i]
		}
	}
	return art, nil
}
