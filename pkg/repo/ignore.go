package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const ignoreFile = ".gritignore"

// IgnoreChecker filters worktree paths against .gritignore. The marker
// directory and .git are always ignored regardless of the file.
type IgnoreChecker struct {
	rules []ignoreRule
}

type ignoreRule struct {
	negated  bool
	dirOnly  bool
	anchored bool // pattern contains a slash: match the full path
	matcher  glob.Glob
}

// NewIgnoreChecker loads .gritignore from repoRoot. A missing file
// leaves only the built-in rules.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{}

	f, err := os.Open(filepath.Join(repoRoot, ignoreFile))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if rule, ok := parseIgnoreLine(scanner.Text()); ok {
			ic.rules = append(ic.rules, rule)
		}
	}
	return ic
}

// parseIgnoreLine compiles one .gritignore line. Empty lines and #
// comments produce nothing. A leading ! negates, a trailing / restricts
// the rule to directories, and a slash anywhere anchors the pattern to
// the repository root instead of matching basenames.
func parseIgnoreLine(line string) (ignoreRule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var rule ignoreRule
	if strings.HasPrefix(line, "!") {
		rule.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	rule.anchored = strings.Contains(line, "/")

	g, err := glob.Compile(line, '/')
	if err != nil {
		return ignoreRule{}, false
	}
	rule.matcher = g
	return rule, true
}

// IsIgnored reports whether the repo-relative path is ignored. Rules
// apply in file order with the last match winning, so a negation can
// re-include an earlier match.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	for _, seg := range strings.Split(rel, "/") {
		if seg == markerDir || seg == ".git" {
			return true
		}
	}
	base := path.Base(rel)

	ignored := false
	for _, rule := range ic.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		target := base
		if rule.anchored {
			target = rel
		}
		if rule.matcher.Match(target) {
			ignored = !rule.negated
		}
	}
	return ignored
}
