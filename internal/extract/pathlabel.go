package extract

import (
	"regexp"
	"strings"
)

var (
	mntPathRe   = regexp.MustCompile(`^/mnt/([a-zA-Z])/(.*)$`)
	driveSlugRe = regexp.MustCompile(`^([a-zA-Z]:)\\-([^\\]+)$`)
)

// displayPath normalizes a working-directory string for display. The POSIX
// bind-mount convention /mnt/<drive>/<rest> becomes <DRIVE>:\<rest>, and a
// drive-rooted path carrying a dash-joined slug tail (C:\-a-b-c) gets the tail
// re-split into path segments.
func displayPath(pathStr string) string {
	s := strings.TrimSpace(pathStr)
	if s == "" {
		return ""
	}
	if m := mntPathRe.FindStringSubmatch(s); m != nil {
		drive := strings.ToUpper(m[1])
		rest := strings.ReplaceAll(m[2], "/", `\`)
		if rest == "" {
			return drive + `:\`
		}
		return drive + `:\` + rest
	}
	converted := strings.ReplaceAll(s, "/", `\`)
	if m := driveSlugRe.FindStringSubmatch(converted); m != nil {
		drive := strings.ToUpper(m[1])
		tail := strings.Join(dashTokens(m[2]), `\`)
		if tail == "" {
			return drive + `\`
		}
		return drive + `\` + tail
	}
	return converted
}

// decodeSlug reconstructs a best-effort path from a dash-joined project slug.
// Dashes inside real directory names are indistinguishable from slug
// separators, so the result is an informed guess, not an exact inverse.
func decodeSlug(slug string) string {
	s := strings.TrimSpace(slug)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, `/\`) || !strings.Contains(s, "-") {
		return s
	}

	parts := dashTokens(strings.TrimLeft(s, "-"))
	if len(parts) == 0 {
		return s
	}

	if len(parts) >= 3 && strings.EqualFold(parts[0], "mnt") && isDriveLetter(parts[1]) {
		return driveRooted(parts[1], parts[2:])
	}
	if len(parts) >= 2 && isDriveLetter(parts[0]) {
		return driveRooted(parts[0], parts[1:])
	}
	return strings.Join(parts, `\`)
}

// projectLabel prefers the working directory when one was captured; the slug
// decoding is only the fallback. Never both.
func projectLabel(rawProject, cwd string) string {
	if strings.TrimSpace(cwd) != "" {
		return displayPath(cwd)
	}
	return decodeSlug(rawProject)
}

func driveRooted(letter string, tail []string) string {
	drive := strings.ToUpper(letter)
	if len(tail) == 0 {
		return drive + `:\`
	}
	return drive + `:\` + strings.Join(tail, `\`)
}

func isDriveLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func dashTokens(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "-") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
