package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlug(t *testing.T) {
	tests := []struct {
		name    string
		address string
		slug    string
		wantErr bool
	}{
		{name: "https", address: "https://github.com/owner/repo.git", slug: "owner/repo"},
		{name: "https no .git", address: "https://github.com/owner/repo", slug: "owner/repo"},
		{name: "ssh", address: "git@github.com:owner/repo.git", slug: "owner/repo"},
		{name: "ssh subgroup", address: "git@gitlab.com:group/sub/repo.git", slug: "group/sub/repo"},
		{name: "https subgroup", address: "https://gitlab.com/group/sub/repo.git", slug: "group/sub/repo"},
		{name: "empty", address: "", wantErr: true},
		{name: "garbage", address: "not a remote", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, err := ParseSlug(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestParseGitService(t *testing.T) {
	assert.Equal(t, "github", ParseGitService("https://github.com/owner/repo.git"))
	assert.Equal(t, "gitlab", ParseGitService("git@gitlab.com:owner/repo.git"))
	assert.Equal(t, "bitbucket", ParseGitService("https://bitbucket.org/owner/repo.git"))
	assert.Equal(t, "", ParseGitService("https://git.internal.example/owner/repo.git"))
}

func TestUnquoteFilename(t *testing.T) {
	tests := []struct {
		name   string
		quoted string
		want   string
	}{
		{name: "plain", quoted: "path/to/file.go", want: "path/to/file.go"},
		{name: "quoted unicode", quoted: `"p\303\244th.go"`, want: "päth.go"},
		{name: "escaped tab", quoted: `"a\tb"`, want: "a\tb"},
		{name: "escaped quote", quoted: `"say \"hi\""`, want: `say "hi"`},
		{name: "escaped backslash", quoted: `"a\\b"`, want: `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnquoteFilename(tt.quoted))
		})
	}
}
