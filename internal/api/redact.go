package api

import "strings"

// RedactToken masks a credential for logging: the first character is
// kept and the remainder replaced by 18 asterisks. The empty token
// redacts to the empty string.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	return token[:1] + strings.Repeat("*", 18)
}
