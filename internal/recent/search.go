package recent

import (
	"regexp"
	"strings"
)

// Predicate matches an entry by its display name and source tag.
type Predicate func(name, source string) bool

// NewSearchPredicate builds a case-insensitive predicate from a search term.
//
//   - ""          matches everything
//   - /pattern/   regular expression; falls back to substring on a bad pattern
//   - a*b, a?b    glob with fnmatch semantics (*, ?, [set], [!set])
//   - anything    substring containment
//
// Each mode tests the name and the source; either one matching is enough.
func NewSearchPredicate(term string) Predicate {
	raw := strings.TrimSpace(term)
	if raw == "" {
		return func(string, string) bool { return true }
	}

	if len(raw) >= 2 && strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") {
		re, err := regexp.Compile("(?i)" + raw[1:len(raw)-1])
		if err != nil {
			return substringPredicate(raw)
		}
		return func(name, source string) bool {
			return re.MatchString(name) || re.MatchString(source)
		}
	}

	if strings.ContainsAny(raw, "*?") {
		re, err := regexp.Compile("(?is)^" + globToRegexp(raw) + "$")
		if err != nil {
			return substringPredicate(raw)
		}
		return func(name, source string) bool {
			return re.MatchString(name) || re.MatchString(source)
		}
	}

	return substringPredicate(raw)
}

func substringPredicate(raw string) Predicate {
	needle := strings.ToLower(raw)
	return func(name, source string) bool {
		return strings.Contains(strings.ToLower(name), needle) ||
			strings.Contains(strings.ToLower(source), needle)
	}
}

// globToRegexp translates an fnmatch-style pattern into a regular expression
// body. An unterminated '[' is taken literally.
func globToRegexp(pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(classToRegexp(runes[i+1 : j]))
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classToRegexp converts the body of an fnmatch set ("!a-z", "]x") into a
// regexp character class.
func classToRegexp(set []rune) string {
	var b strings.Builder
	b.WriteByte('[')
	k := 0
	if len(set) > 0 {
		switch set[0] {
		case '!':
			b.WriteByte('^')
			k = 1
		case '^':
			b.WriteString(`\^`)
			k = 1
		}
	}
	for ; k < len(set); k++ {
		switch set[k] {
		case '\\':
			b.WriteString(`\\`)
		case '[':
			b.WriteString(`\[`)
		default:
			b.WriteRune(set[k])
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Filter returns the entries whose name or source satisfy p, preserving order.
func Filter(entries []*HistoryEntry, p Predicate) []*HistoryEntry {
	out := make([]*HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if p(e.DisplayName, e.Source) {
			out = append(out, e)
		}
	}
	return out
}
