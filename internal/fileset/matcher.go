package fileset

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher applies include and exclude globs to base-relative paths.
// Excludes take precedence over includes.
type Matcher struct {
	includes []string
	excludes []string
}

// NewMatcher validates every pattern before returning a matcher.
func NewMatcher(includes, excludes []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range includes {
		p = normalizePattern(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
		m.includes = append(m.includes, p)
	}
	for _, p := range excludes {
		p = normalizePattern(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		m.excludes = append(m.excludes, p)
	}
	return m, nil
}

// Match reports whether rel is selected. rel uses forward slashes.
func (m *Matcher) Match(rel string) bool {
	rel = path.Clean(rel)
	if !matchAny(m.excludes, rel) {
		return matchAny(m.includes, rel)
	}
	return false
}

// Includes returns the normalized include patterns.
func (m *Matcher) Includes() []string { return append([]string(nil), m.includes...) }

// Excludes returns the normalized exclude patterns.
func (m *Matcher) Excludes() []string { return append([]string(nil), m.excludes...) }

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// ValidatePattern already rejected anything Match could fail on.
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// A trailing slash selects everything below a directory, Ant style.
func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "./")
	if strings.HasSuffix(p, "/") {
		p += "**"
	}
	return p
}
