package finder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))
	}
	return root
}

func names(artifacts []Artifact, root string) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		rel, _ := filepath.Rel(root, a.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFindCoverageReports(t *testing.T) {
	root := makeTree(t,
		"coverage.xml",
		"build/lcov.info",
		"src/main.go",
		"README.md",
		"jacoco-report.xml",
	)
	f := &Finder{SearchRoot: root, ReportType: ReportTypeCoverage, Logger: zap.NewNop()}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"build/lcov.info", "coverage.xml", "jacoco-report.xml"}, names(artifacts, root))
}

func TestFindSkipsIgnoredDirectories(t *testing.T) {
	root := makeTree(t,
		"coverage.xml",
		"node_modules/pkg/coverage.xml",
		"vendor/lib/lcov.info",
		".git/coverage.xml",
	)
	f := &Finder{SearchRoot: root, ReportType: ReportTypeCoverage, Logger: zap.NewNop()}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"coverage.xml"}, names(artifacts, root))
}

func TestFindHonorsUserExcludedFolders(t *testing.T) {
	root := makeTree(t,
		"coverage.xml",
		"fixtures/coverage.xml",
	)
	f := &Finder{
		SearchRoot:  root,
		ReportType:  ReportTypeCoverage,
		ExcludeDirs: []string{"fixtures"},
		Logger:      zap.NewNop(),
	}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"coverage.xml"}, names(artifacts, root))
}

func TestFindExclusionPatterns(t *testing.T) {
	root := makeTree(t,
		"coverage.xml",
		"coverage.sh",
		"remapInstanbul.coverage.json",
		".coveragerc",
	)
	f := &Finder{SearchRoot: root, ReportType: ReportTypeCoverage, Logger: zap.NewNop()}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"coverage.xml"}, names(artifacts, root))
}

func TestFindTestResults(t *testing.T) {
	root := makeTree(t,
		"junit.xml",
		"TEST-com.example.AppTest.xml",
		"coverage.xml",
	)
	f := &Finder{SearchRoot: root, ReportType: ReportTypeTestResults, Logger: zap.NewNop()}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"TEST-com.example.AppTest.xml", "junit.xml"}, names(artifacts, root))
}

func TestExplicitFilesBypassExclusions(t *testing.T) {
	root := makeTree(t, "custom.codecov.sh")
	explicit := filepath.Join(root, "custom.codecov.sh")
	f := &Finder{
		SearchRoot:    root,
		ReportType:    ReportTypeCoverage,
		ExplicitFiles: []string{explicit},
		DisableSearch: true,
		Logger:        zap.NewNop(),
	}
	artifacts, err := f.Find()
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, explicit, artifacts[0].Path)
}

func TestExplicitMissingFileIsNotFatal(t *testing.T) {
	root := makeTree(t, "coverage.xml")
	f := &Finder{
		SearchRoot:    root,
		ReportType:    ReportTypeCoverage,
		ExplicitFiles: []string{filepath.Join(root, "does-not-exist.xml")},
		Logger:        zap.NewNop(),
	}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{"coverage.xml"}, names(artifacts, root))
}

func TestDisableSearchWithoutExplicitFiles(t *testing.T) {
	root := makeTree(t, "coverage.xml")
	f := &Finder{
		SearchRoot:    root,
		ReportType:    ReportTypeCoverage,
		DisableSearch: true,
		Logger:        zap.NewNop(),
	}
	artifacts, err := f.Find()
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestGlobToRegex(t *testing.T) {
	re := compileGlobs([]string{"*coverage*.*", "junit.xml"})
	assert.True(t, re.MatchString("my-coverage-final.json"))
	assert.True(t, re.MatchString("Coverage.XML"), "matching is case insensitive")
	assert.True(t, re.MatchString("junit.xml"))
	assert.False(t, re.MatchString("report.txt"))
	assert.Nil(t, compileGlobs(nil))
}
