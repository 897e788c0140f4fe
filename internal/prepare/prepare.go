// Package prepare runs preparation plugins before report discovery.
// Plugins generate uploadable reports from intermediate build output,
// such as gcov notes files.
package prepare

import (
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Plugin converts build output into report files. A failing plugin
// aborts the run; plugins that have nothing to do succeed quietly.
type Plugin interface {
	Name() string
	Run(ctx context.Context) error
}

// Select maps plugin names to implementations. Unknown names produce
// a warning and are skipped.
func Select(names []string, root string, gcovArgs []string, logger *zap.Logger) []Plugin {
	var out []Plugin
	for _, name := range names {
		switch name {
		case "gcov":
			out = append(out, &GcovPlugin{Root: root, ExtraArgs: gcovArgs, Logger: logger})
		case "noop":
			out = append(out, NoopPlugin{})
		default:
			logger.Warn("unknown preparation plugin", zap.String("plugin", name))
		}
	}
	return out
}

// RunAll executes plugins in order, stopping at the first failure.
func RunAll(ctx context.Context, plugins []Plugin, logger *zap.Logger) error {
	for _, p := range plugins {
		logger.Debug("running preparation plugin", zap.String("plugin", p.Name()))
		if err := p.Run(ctx); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

// NoopPlugin does nothing. It exists so runs can explicitly opt out
// of preparation.
type NoopPlugin struct{}

func (NoopPlugin) Name() string              { return "noop" }
func (NoopPlugin) Run(context.Context) error { return nil }

// GcovPlugin locates gcov notes files under Root and runs the gcov
// executable over them so that textual reports exist at search time.
type GcovPlugin struct {
	Root      string
	Exec      string
	ExtraArgs []string
	Logger    *zap.Logger
}

func (p *GcovPlugin) Name() string { return "gcov" }

func (p *GcovPlugin) Run(ctx context.Context) error {
	executable := p.Exec
	if executable == "" {
		executable = "gcov"
	}
	if _, err := exec.LookPath(executable); err != nil {
		p.Logger.Warn("gcov executable not found, skipping", zap.String("exec", executable))
		return nil
	}

	root := p.Root
	if root == "" {
		root = "."
	}
	var notes []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (name == ".git" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".gcno") {
			notes = append(notes, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		p.Logger.Info("no gcov notes files found, skipping gcov")
		return nil
	}

	args := append([]string{"-pb"}, p.ExtraArgs...)
	args = append(args, notes...)
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = root
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("running gcov: %w: %s", err, strings.TrimSpace(string(output)))
	}
	p.Logger.Debug("gcov finished", zap.Int("notes_files", len(notes)))
	return nil
}
