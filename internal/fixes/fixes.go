// Package fixes scans tracked source files for lines that coverage
// tools report as executable but never are, such as blank lines and
// closing brackets. The resulting line sets let the backend correct
// per-file coverage totals.
package fixes

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	emptyLineRe     = regexp.MustCompile(`^\s*$`)
	commentRe       = regexp.MustCompile(`^\s*\/\/.*$`)
	bracketRe       = regexp.MustCompile(`^\s*[\{\}]\s*(\/\/.*)?$`)
	listRe          = regexp.MustCompile(`^\s*[\]\[]\s*(\/\/.*)?$`)
	goFunctionRe    = regexp.MustCompile(`^\s*func\s*[\{]\s*(\/\/.*)?$`)
	phpEndBracketRe = regexp.MustCompile(`^\s*\);\s*(\/\/.*)?$`)
	commentBlockRe  = regexp.MustCompile(`^\s*(\/\*|\*\/)\s*$`)
	lcovExcludeRe   = regexp.MustCompile(`\/\/ LCOV_EXCL`)
)

// languageRules describe which line shapes are uncoverable in files
// matching the glob.
type languageRules struct {
	lineRes  []*regexp.Regexp
	blockRes []*regexp.Regexp
	eof      bool
}

var cFamilyRules = languageRules{
	lineRes:  []*regexp.Regexp{emptyLineRe, bracketRe},
	blockRes: []*regexp.Regexp{lcovExcludeRe},
}

var rulesByGlob = map[string]languageRules{
	"*.kt": {
		lineRes:  []*regexp.Regexp{bracketRe},
		blockRes: []*regexp.Regexp{commentBlockRe},
		eof:      true,
	},
	"*.go": {
		lineRes:  []*regexp.Regexp{emptyLineRe, commentRe, bracketRe, goFunctionRe},
		blockRes: []*regexp.Regexp{commentBlockRe},
	},
	"*.dart": {
		lineRes: []*regexp.Regexp{bracketRe},
	},
	"*.php": {
		lineRes: []*regexp.Regexp{bracketRe, listRe, phpEndBracketRe},
	},
	"*.c":     cFamilyRules,
	"*.cpp":   cFamilyRules,
	"*.cxx":   cFamilyRules,
	"*.h":     cFamilyRules,
	"*.hpp":   cFamilyRules,
	"*.m":     cFamilyRules,
	"*.swift": cFamilyRules,
	"*.vala":  cFamilyRules,
}

// LineFix is an uncoverable line whose content is kept so the
// backend can attribute the exclusion.
type LineFix struct {
	Line    int
	Content string
}

// Fix holds the uncoverable lines found in one file. Line numbers
// are 1-based. WithReason entries carry the matched content;
// WithoutReason entries are bare line numbers. EOF is the last line
// number for languages that ask for it, nil otherwise.
type Fix struct {
	Path          string
	WithoutReason []int
	WithReason    []LineFix
	EOF           *int
}

// Lines is the union of both sets, sorted and deduplicated.
func (f Fix) Lines() []int {
	all := append([]int{}, f.WithoutReason...)
	for _, lf := range f.WithReason {
		all = append(all, lf.Line)
	}
	return dedupe(all)
}

// Scan inspects every path that matches a known language glob and
// returns one Fix per file with findings. Paths are read relative to
// root and reported as given. Unreadable and non-UTF-8 files are
// skipped with a warning.
func Scan(root string, paths []string, logger *zap.Logger) []Fix {
	var out []Fix
	for _, path := range paths {
		rules, ok := match(path)
		if !ok {
			continue
		}
		fix, ok := scanFile(root, path, rules, logger)
		if ok {
			out = append(out, fix)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func match(path string) (languageRules, bool) {
	base := filepath.Base(path)
	for glob, rules := range rulesByGlob {
		if ok, _ := filepath.Match(glob, base); ok {
			return rules, true
		}
	}
	return languageRules{}, false
}

func scanFile(root, path string, rules languageRules, logger *zap.Logger) (Fix, bool) {
	full := path
	if root != "" {
		full = filepath.Join(root, path)
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return Fix{}, false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		logger.Warn("unable to read file for path fixing", zap.String("path", path), zap.Error(err))
		return Fix{}, false
	}
	if !utf8.Valid(data) {
		logger.Warn("file is not valid UTF-8, skipping path fixing", zap.String("path", path))
		return Fix{}, false
	}

	lines := splitLines(string(data))
	fix := Fix{Path: filepath.ToSlash(path)}
	for i, line := range lines {
		if matchAny(rules.blockRes, line) {
			fix.WithReason = append(fix.WithReason, LineFix{Line: i + 1, Content: line})
		} else if matchAny(rules.lineRes, line) {
			fix.WithoutReason = append(fix.WithoutReason, i+1)
		}
	}

	if rules.eof {
		eof := len(lines)
		fix.EOF = &eof
	}
	if len(fix.WithoutReason) == 0 && len(fix.WithReason) == 0 && fix.EOF == nil {
		return Fix{}, false
	}
	return fix, true
}

func matchAny(res []*regexp.Regexp, line string) bool {
	for _, re := range res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// splitLines splits on \n and tolerates \r\n endings. A trailing
// newline does not produce a phantom last line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func dedupe(in []int) []int {
	sort.Ints(in)
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}
