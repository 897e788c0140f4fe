package vcs

import "strconv"

// UnquoteFilename undoes git's C-style quoting of unusual filenames.
// `git ls-files` wraps names containing control or non-ASCII bytes in
// double quotes and escapes them (\n, \t, \", \\ and three-digit
// octal). Plain names are returned unchanged.
func UnquoteFilename(name string) string {
	if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
		return name
	}
	body := name[1 : len(name)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			out = append(out, c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '"', '\\':
			out = append(out, e)
		default:
			if e >= '0' && e <= '7' && i+2 < len(body) {
				if n, err := strconv.ParseUint(body[i:i+3], 8, 8); err == nil {
					out = append(out, byte(n))
					i += 2
					continue
				}
			}
			out = append(out, '\\', e)
		}
	}
	return string(out)
}
