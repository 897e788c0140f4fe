package resolver

import (
	"fmt"
	"regexp"

	"github.com/codecov/cli/internal/api"
)

var sha40Re = regexp.MustCompile(`^[0-9a-f]{40}$`)

// gitServices are the hosting services the backend recognizes.
var gitServices = map[string]bool{
	"github":            true,
	"gitlab":            true,
	"bitbucket":         true,
	"github_enterprise": true,
	"gitlab_enterprise": true,
	"bitbucket_server":  true,
}

// GitServiceNames lists the accepted --git-service values.
func GitServiceNames() []string {
	return []string{
		"github", "gitlab", "bitbucket",
		"github_enterprise", "gitlab_enterprise", "bitbucket_server",
	}
}

// ValidateSHA enforces the full 40-hex commit identifier. Abbreviated
// SHAs are rejected: the backend keys records by the full identifier.
func ValidateSHA(sha string) error {
	if !sha40Re.MatchString(sha) {
		return fmt.Errorf("%w: commit SHA %q is not a full 40-character hex SHA", api.ErrValidation, sha)
	}
	return nil
}

// ValidateGitService rejects unknown hosting services.
func ValidateGitService(service string) error {
	if !gitServices[service] {
		return fmt.Errorf("%w: unknown git service %q", api.ErrValidation, service)
	}
	return nil
}

// Validate applies the structural invariant of field to value, when
// the field has one.
func Validate(field Field, value string) error {
	switch field {
	case FieldCommitSHA, FieldParentSHA:
		return ValidateSHA(value)
	case FieldSlug:
		if !api.ValidSlug(value) {
			return fmt.Errorf("%w: slug %q does not have the owner/repo shape", api.ErrValidation, value)
		}
	case FieldGitService:
		return ValidateGitService(value)
	}
	return nil
}
