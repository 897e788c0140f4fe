package fixes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScanGoFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.go", `package main

// a comment
func main() {
	run()
}
`)
	result := Scan(dir, []string{"main.go"}, zap.NewNop())
	require.Len(t, result, 1)
	fix := result[0]
	assert.Equal(t, "main.go", fix.Path)
	// line 2 blank, line 3 comment, line 6 closing bracket
	assert.Equal(t, []int{2, 3, 6}, fix.WithoutReason)
	assert.Empty(t, fix.WithReason)
	assert.Equal(t, []int{2, 3, 6}, fix.Lines())
	assert.Nil(t, fix.EOF)
}

func TestScanGoBlockCommentKeepsContent(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "doc.go", `package doc
/*
block
*/
`)
	result := Scan(dir, []string{"doc.go"}, zap.NewNop())
	require.Len(t, result, 1)
	fix := result[0]
	require.Len(t, fix.WithReason, 2)
	assert.Equal(t, LineFix{Line: 2, Content: "/*"}, fix.WithReason[0])
	assert.Equal(t, LineFix{Line: 4, Content: "*/"}, fix.WithReason[1])
	assert.Equal(t, []int{2, 4}, fix.Lines())
}

func TestScanKotlinReportsEOF(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "App.kt", `fun main() {
    println("hi")
}
`)
	result := Scan(dir, []string{"App.kt"}, zap.NewNop())
	require.Len(t, result, 1)
	assert.Equal(t, []int{3}, result[0].Lines())
	require.NotNil(t, result[0].EOF)
	assert.Equal(t, 3, *result[0].EOF)
}

func TestScanCFamilyLcovMarkers(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "lib.cpp", `int f() { // LCOV_EXCL_LINE
  return 1;
}

`)
	result := Scan(dir, []string{"lib.cpp"}, zap.NewNop())
	require.Len(t, result, 1)
	fix := result[0]
	// line 1 carries the exclusion marker, line 3 is a bracket, line 4 blank
	require.Len(t, fix.WithReason, 1)
	assert.Equal(t, 1, fix.WithReason[0].Line)
	assert.Contains(t, fix.WithReason[0].Content, "LCOV_EXCL_LINE")
	assert.Equal(t, []int{3, 4}, fix.WithoutReason)
	assert.Equal(t, []int{1, 3, 4}, fix.Lines())
}

func TestScanPHP(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "index.php", `<?php
$x = array(
  1,
);
[
]
`)
	result := Scan(dir, []string{"index.php"}, zap.NewNop())
	require.Len(t, result, 1)
	assert.Equal(t, []int{4, 5, 6}, result[0].Lines())
}

func TestScanReadsRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	writeSource(t, dir, filepath.Join("pkg", "a.go"), "package a\n\n")
	result := Scan(dir, []string{"pkg/a.go"}, zap.NewNop())
	require.Len(t, result, 1)
	assert.Equal(t, "pkg/a.go", result[0].Path)
}

func TestScanSkipsUnknownLanguages(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "script.py", "def f():\n    pass\n")
	assert.Empty(t, Scan(dir, []string{"script.py"}, zap.NewNop()))
}

func TestScanSkipsNonUTF8(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.go"), []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))
	assert.Empty(t, Scan(dir, []string{"bin.go"}, zap.NewNop()))
}

func TestScanSkipsMissingFiles(t *testing.T) {
	assert.Empty(t, Scan("", []string{"/does/not/exist.go"}, zap.NewNop()))
}
