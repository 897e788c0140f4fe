package upload

import "strings"

// NetworkOptions shape the tracked file list sent alongside coverage.
type NetworkOptions struct {
	// Filter keeps only paths beginning with this prefix.
	Filter string
	// Prefix is prepended to every surviving path.
	Prefix string
	// RootFolder overrides where the VCS network root is probed from.
	RootFolder string
}

// filterNetwork keeps the tracked files passing Filter, untouched.
func filterNetwork(files []string, opts NetworkOptions) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if opts.Filter != "" && !strings.HasPrefix(f, opts.Filter) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// prefixNetwork prepends prefix to every path.
func prefixNetwork(files []string, prefix string) []string {
	if prefix == "" {
		return files
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = prefix + f
	}
	return out
}
