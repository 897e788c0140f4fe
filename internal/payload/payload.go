// Package payload assembles upload bodies from discovered artifacts,
// the tracked file list and path fixes. The primary format is the
// JSON document consumed by the ingest service; the legacy text
// format serves the v4 endpoint.
package payload

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/codecov/cli/internal/finder"
	"github.com/codecov/cli/internal/fixes"
)

// coverageFileFormat tags each entry so the backend knows how to
// decode the data field.
const coverageFileFormat = "base64+compressed"

// pathFixValue always carries the eof key; null means the language
// rules did not request one.
type pathFixValue struct {
	EOF   *int  `json:"eof"`
	Lines []int `json:"lines"`
}

type pathFixes struct {
	Format string                  `json:"format"`
	Value  map[string]pathFixValue `json:"value"`
}

type coverageFile struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Data     string `json:"data"`
	Labels   string `json:"labels"`
}

type body struct {
	PathFixes     pathFixes      `json:"path_fixes"`
	NetworkFiles  []string       `json:"network_files"`
	CoverageFiles []coverageFile `json:"coverage_files"`
	Metadata      map[string]any `json:"metadata"`
}

// BuildJSON serializes artifacts, the network file list and fixes
// into the ingest upload document. Artifact contents are compressed
// with zlib and base64 encoded.
func BuildJSON(artifacts []finder.Artifact, networkFiles []string, fxs []fixes.Fix) ([]byte, error) {
	b := body{
		PathFixes: pathFixes{
			Format: "legacy",
			Value:  map[string]pathFixValue{},
		},
		NetworkFiles:  networkFiles,
		CoverageFiles: []coverageFile{},
		Metadata:      map[string]any{},
	}
	if b.NetworkFiles == nil {
		b.NetworkFiles = []string{}
	}
	for _, fx := range fxs {
		lines := fx.Lines()
		if lines == nil {
			lines = []int{}
		}
		b.PathFixes.Value[fx.Path] = pathFixValue{EOF: fx.EOF, Lines: lines}
	}
	for _, a := range artifacts {
		content, err := a.Content()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", a.Path, err)
		}
		data, err := compress(content)
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", a.Path, err)
		}
		b.CoverageFiles = append(b.CoverageFiles, coverageFile{
			Filename: a.DisplayPath(),
			Format:   coverageFileFormat,
			Data:     data,
			Labels:   "",
		})
	}
	return json.Marshal(b)
}

// BuildLegacy produces the block-delimited text body accepted by the
// v4 upload endpoint. env holds CODECOV_ENV style name=value pairs.
func BuildLegacy(artifacts []finder.Artifact, networkFiles []string, env []string) ([]byte, error) {
	var buf bytes.Buffer
	if len(env) > 0 {
		for _, kv := range env {
			buf.WriteString(kv)
			buf.WriteByte('\n')
		}
		buf.WriteString("<<<<<< ENV\n")
	}
	for _, f := range networkFiles {
		buf.WriteString(f)
		buf.WriteByte('\n')
	}
	buf.WriteString("<<<<<< network\n")
	for _, a := range artifacts {
		content, err := a.Content()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", a.Path, err)
		}
		fmt.Fprintf(&buf, "# path=%s\n", a.DisplayPath())
		buf.Write(content)
		buf.WriteString("\n<<<<<< EOF\n")
	}
	return buf.Bytes(), nil
}

func compress(content []byte) (string, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(content); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
