package api

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugRe        = regexp.MustCompile(`^[^/\s]+(/[^/\s]+)+$`)
	encodedSlugRe = regexp.MustCompile(`^[^:\s]+(:::[^:\s]+)*::::[^:\s]+$`)
)

// ValidSlug reports whether slug has the owner/repo shape, with any
// number of subgroup segments between owner and repo.
func ValidSlug(slug string) bool {
	return slugRe.MatchString(slug)
}

// EncodeSlug converts owner[/subgroup...]/repo into the wire form the
// upload endpoints expect: owner segments joined with ":::" and the
// final repo attached with "::::".
//
//	codecov/cli        -> codecov::::cli
//	group/sub/proj     -> group:::sub::::proj
func EncodeSlug(slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: invalid slug %q", ErrValidation, slug)
	}
	idx := strings.LastIndex(slug, "/")
	owner, repo := slug[:idx], slug[idx+1:]
	encodedOwner := strings.Join(strings.Split(owner, "/"), ":::")
	return encodedOwner + "::::" + repo, nil
}

// DecodeSlug is the inverse of EncodeSlug.
func DecodeSlug(encoded string) (string, error) {
	if !encodedSlugRe.MatchString(encoded) {
		return "", fmt.Errorf("%w: invalid encoded slug %q", ErrValidation, encoded)
	}
	idx := strings.LastIndex(encoded, "::::")
	owner, repo := encoded[:idx], encoded[idx+len("::::"):]
	return strings.ReplaceAll(owner, ":::", "/") + "/" + repo, nil
}
