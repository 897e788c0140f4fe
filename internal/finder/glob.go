package finder

import (
	"regexp"
	"strings"
)

// globToRegex translates a single shell glob into a regexp fragment.
// "*" and "?" may cross path separators, matching shell fnmatch
// semantics rather than filepath.Match.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				j++
			}
			if j < len(glob) && glob[j] == ']' {
				j++
			}
			for j < len(glob) && glob[j] != ']' {
				j++
			}
			if j >= len(glob) {
				b.WriteString(regexp.QuoteMeta(string(c)))
				break
			}
			set := glob[i+1 : j]
			if strings.HasPrefix(set, "!") {
				set = "^" + set[1:]
			}
			b.WriteString("[" + set + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// compileGlobs joins globs into one case-insensitive anchored regexp.
// Returns nil when the list is empty.
func compileGlobs(globs []string) *regexp.Regexp {
	if len(globs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(globs))
	for _, g := range globs {
		parts = append(parts, globToRegex(g))
	}
	return regexp.MustCompile(`(?i)^(?:` + strings.Join(parts, "|") + `)$`)
}
