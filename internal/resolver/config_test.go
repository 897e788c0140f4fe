package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverConfigOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".github", "codecov.yml"), "codecov: {}\n")
	writeFile(t, filepath.Join(root, "dev", "codecov.yml"), "codecov: {}\n")

	assert.Equal(t, filepath.Join(root, ".github", "codecov.yml"), DiscoverConfig(root))

	writeFile(t, filepath.Join(root, ".codecov.yaml"), "codecov: {}\n")
	assert.Equal(t, filepath.Join(root, ".codecov.yaml"), DiscoverConfig(root),
		"root directory beats .github and dev")
}

func TestDiscoverConfigNone(t *testing.T) {
	assert.Empty(t, DiscoverConfig(t.TempDir()))
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "codecov.yml")
	writeFile(t, path, `
codecov:
  token: abc123
  slug: owner/repo
cli:
  runners:
    pytest:
      collect_tests_command: ["pytest", "--collect-only"]
mystery_key: true
`)
	cfg, err := LoadConfig(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.Token())
	assert.Equal(t, "owner/repo", cfg.Get(FieldSlug))
	assert.Empty(t, cfg.Get(FieldBranch))
	assert.NotNil(t, cfg.Runner("pytest"))
	assert.Nil(t, cfg.Runner("jest"))
}

func TestLoadConfigBadYAML(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "codecov.yml")
	writeFile(t, path, "codecov: [unclosed\n")
	_, err := LoadConfig(path, zap.NewNop())
	assert.Error(t, err)
}

func TestNilConfigIsSafe(t *testing.T) {
	var cfg *Config
	assert.Empty(t, cfg.Token())
	assert.Empty(t, cfg.Get(FieldSlug))
}
