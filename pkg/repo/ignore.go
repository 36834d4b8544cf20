package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreChecker decides whether a working-tree path is excluded from
// tracking. Patterns come from a .bkkignore file at the repository root;
// the metadata directories are always excluded. Pattern matching is glob
// based (path.Match): patterns containing a slash match against the full
// repo-relative path, others against the base name.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool
}

// NewIgnoreChecker creates an IgnoreChecker for the given repository root.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{
		patterns: []ignorePattern{
			{pattern: ".bkk"},
			{pattern: ".git"},
		},
	}

	f, err := os.Open(filepath.Join(repoRoot, ".bkkignore"))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	return ic
}

// parseIgnoreLine parses one .bkkignore line. Returns nil for blank lines
// and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	p.pattern = line
	p.hasSlash = strings.Contains(line, "/")
	return &p
}

// IsIgnored reports whether the repo-relative path matches the ignore
// patterns. isDir says whether the path names a directory; trailing-slash
// patterns only match directories (and anything beneath them). Later
// patterns override earlier ones, so a negation can re-include a previously
// ignored path.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	ignored := false
	for _, p := range ic.patterns {
		if p.matches(rel, isDir) {
			ignored = !p.negated
		}
	}
	return ignored
}

func (p ignorePattern) matches(rel string, isDir bool) bool {
	if p.hasSlash {
		if ok, err := path.Match(p.pattern, rel); err == nil && ok {
			return !p.dirOnly || isDir
		}
		// A dir-only path pattern covers everything beneath the directory.
		return p.dirOnly && strings.HasPrefix(rel, p.pattern+"/")
	}
	// Basename patterns match the path's own base and any ancestor
	// directory segment, so ignoring "build" covers "build/out.o".
	segs := strings.Split(rel, "/")
	for i, seg := range segs {
		ok, err := path.Match(p.pattern, seg)
		if err != nil || !ok {
			continue
		}
		// Ancestor segments are directories; only the final segment can
		// be a plain file, which a dir-only pattern must not match.
		if p.dirOnly && i == len(segs)-1 && !isDir {
			continue
		}
		return true
	}
	return false
}
