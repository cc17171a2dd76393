package fs

import (
	"path/filepath"
	"strings"
)

// IgnoreMatcher checks artifact file names against glob patterns such as
// "*.url.lnk" or "Temp*". Matching is case-insensitive, like file names in
// the Windows Recent folder.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank entries and entries starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, strings.ToLower(raw))
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the file name should be ignored.
func (m *IgnoreMatcher) Match(name string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	lowered := strings.ToLower(name)
	for _, p := range m.patterns {
		matched, err := filepath.Match(p, lowered)
		if err != nil {
			// Bad pattern: skip rather than fail the scan.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
