// Package finder locates coverage and test result artifacts on disk.
// It walks a root directory with a pruned ignore list, or takes an
// explicit user-provided file list, and returns the surviving paths.
package finder

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Artifact is a single report file selected for upload. Content is
// read lazily so that discovery stays cheap.
type Artifact struct {
	// Path is the filesystem path, relative to the search root when
	// discovered by a walk.
	Path string
}

// Content reads the artifact from disk.
func (a Artifact) Content() ([]byte, error) {
	return os.ReadFile(a.Path)
}

// DisplayPath is the slash-separated path reported to the backend.
func (a Artifact) DisplayPath() string {
	return filepath.ToSlash(a.Path)
}

// Finder discovers report files under SearchRoot.
type Finder struct {
	SearchRoot    string
	ReportType    ReportType
	ExplicitFiles []string
	ExcludeDirs   []string
	DisableSearch bool
	Logger        *zap.Logger
}

// Find returns the selected artifacts, sorted and deduplicated. An
// empty result is not an error here; callers decide whether missing
// artifacts are fatal.
func (f *Finder) Find() ([]Artifact, error) {
	include := coveragePatterns
	exclude := coverageExcludedPatterns
	if f.ReportType == ReportTypeTestResults {
		include = testResultsPatterns
		exclude = testResultsExcludedPatterns
	}
	excludeRe := compileGlobs(exclude)

	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if !f.DisableSearch {
		found, err := f.walk(compileGlobs(include), excludeRe, f.ExcludeDirs)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}

	if len(f.ExplicitFiles) > 0 {
		explicit, err := f.explicit(excludeRe)
		if err != nil {
			return nil, err
		}
		for _, p := range explicit {
			add(p)
		}
	}

	sort.Strings(paths)
	artifacts := make([]Artifact, 0, len(paths))
	for _, p := range paths {
		artifacts = append(artifacts, Artifact{Path: p})
	}
	return artifacts, nil
}

// explicit resolves the user-listed files. Entries may be globs, in
// which case the tree is walked again with the user patterns as the
// include set. Entries that match the exclusion list are kept but
// flagged, and entries that resolve to nothing produce a warning.
func (f *Finder) explicit(excludeRe *regexp.Regexp) ([]string, error) {
	var overridden []string
	names := make([]string, 0, len(f.ExplicitFiles))
	for _, file := range f.ExplicitFiles {
		names = append(names, filepath.Base(file))
		if excludeRe != nil && excludeRe.MatchString(filepath.Base(file)) {
			overridden = append(overridden, file)
		}
	}
	if len(overridden) > 0 {
		f.Logger.Warn("some explicitly added files are in the exclusion list and will be uploaded anyway",
			zap.Strings("files", overridden))
	}

	found, err := f.walk(compileGlobs(names), nil, f.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	inFound := map[string]bool{}
	for _, p := range found {
		inFound[filepath.Clean(p)] = true
	}

	var missing []string
	for _, file := range f.ExplicitFiles {
		clean := filepath.Clean(file)
		if inFound[clean] {
			continue
		}
		if _, err := os.Stat(clean); err == nil {
			found = append(found, clean)
			inFound[clean] = true
		} else if !strings.ContainsAny(file, "*?[") {
			missing = append(missing, file)
		}
	}
	if len(missing) > 0 {
		f.Logger.Warn("some explicitly listed files were not found", zap.Strings("files", missing))
	}
	return found, nil
}

// walk scans the tree below SearchRoot, pruning ignored directories.
// Patterns without a path separator match the basename, patterns with
// one match the slash-joined relative path.
func (f *Finder) walk(includeRe, excludeRe *regexp.Regexp, extraIgnored []string) ([]string, error) {
	if includeRe == nil {
		return nil, nil
	}
	root := f.SearchRoot
	if root == "" {
		root = "."
	}
	ignored := map[string]bool{}
	for _, d := range defaultIgnoredDirs {
		ignored[d] = true
	}
	for _, d := range extraIgnored {
		ignored[filepath.Clean(d)] = true
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			f.Logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		if d.IsDir() {
			if path != root && (ignored[d.Name()] || ignored[rel] || ignored[filepath.ToSlash(rel)]) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		slashRel := filepath.ToSlash(rel)
		if !includeRe.MatchString(name) && !includeRe.MatchString(slashRel) {
			return nil
		}
		if excludeRe != nil && (excludeRe.MatchString(name) || excludeRe.MatchString(slashRel)) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}
