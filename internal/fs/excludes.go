package fs

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// BuiltinExcludes are skipped whenever ignore rules are respected.
var BuiltinExcludes = []string{
	".git/",
	".hg/",
	".svn/",
	".jj/",
	".DS_Store",
}

// ExcludeList holds the computed effective exclude patterns.
type ExcludeList struct {
	Patterns []string
}

// ExcludeOptions configures how the exclude list is built.
type ExcludeOptions struct {
	// Additional patterns to add, doublestar syntax
	Additional []string
	// Patterns to remove from the builtin set
	Remove []string
}

// BuildExcludeList computes the effective exclude list from all sources.
func BuildExcludeList(opts ExcludeOptions) *ExcludeList {
	patterns := make([]string, 0, len(BuiltinExcludes)+len(opts.Additional))

	removeSet := make(map[string]bool, len(opts.Remove))
	for _, p := range opts.Remove {
		removeSet[p] = true
	}

	for _, p := range BuiltinExcludes {
		if !removeSet[p] {
			patterns = append(patterns, p)
		}
	}

	patterns = append(patterns, opts.Additional...)

	return &ExcludeList{Patterns: dedupePatterns(patterns)}
}

// Matches reports whether the slash-separated path rel (relative to the walk
// root) is excluded. Patterns ending in "/" only match directories; patterns
// without a "/" match the base name at any depth.
func (e *ExcludeList) Matches(rel string, isDir bool) bool {
	if e == nil {
		return false
	}
	base := path.Base(rel)

	for _, p := range e.Patterns {
		dirOnly := strings.HasSuffix(p, "/")
		if dirOnly {
			if !isDir {
				continue
			}
			p = strings.TrimSuffix(p, "/")
		}

		target := rel
		if !strings.Contains(p, "/") {
			target = base
		}

		if ok, err := doublestar.Match(p, target); err == nil && ok {
			return true
		}
	}
	return false
}

// Validate reports the first malformed pattern, if any.
func (e *ExcludeList) Validate() error {
	for _, p := range e.Patterns {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return &PatternError{Pattern: p}
		}
	}
	return nil
}

// PatternError reports a malformed exclude glob.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid exclude pattern: " + e.Pattern
}

// dedupePatterns removes duplicate patterns while preserving order.
func dedupePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))

	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	return result
}
