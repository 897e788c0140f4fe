package vcs

import (
	"fmt"
	"strings"
)

// ParseSlug extracts an owner/repo slug from a git remote address.
//
// Accepted shapes:
//
//	https://github.com/codecov/cli.git
//	git@github.com:codecov/cli.git
func ParseSlug(address string) (string, error) {
	if strings.Contains(address, "http") {
		// https://github.com/codecov/cli.git
		parts := strings.SplitN(address, "//", 2)
		if len(parts) < 2 {
			return "", fmt.Errorf("not a valid remote address: %q", address)
		}
		hostAndPath := strings.SplitN(parts[1], "/", 2)
		if len(hostAndPath) < 2 || hostAndPath[1] == "" {
			return "", fmt.Errorf("not a valid remote address: %q", address)
		}
		return strings.SplitN(hostAndPath[1], ".git", 2)[0], nil
	}
	if strings.Contains(address, "@") {
		// git@github.com:codecov/cli.git
		parts := strings.SplitN(address, ":", 2)
		if len(parts) < 2 || parts[1] == "" {
			return "", fmt.Errorf("not a valid remote address: %q", address)
		}
		return strings.SplitN(parts[1], ".git", 2)[0], nil
	}
	return "", fmt.Errorf("not a valid remote address: %q", address)
}

// ParseGitService derives the hosting service name from a remote
// address, or "" when the host is not recognized.
func ParseGitService(address string) string {
	switch {
	case strings.Contains(address, "github.com"):
		return "github"
	case strings.Contains(address, "gitlab.com"):
		return "gitlab"
	case strings.Contains(address, "bitbucket.org"):
		return "bitbucket"
	}
	return ""
}
