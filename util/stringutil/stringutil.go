package stringutil

import "strings"

// FirstLine returns the first line of s without the trailing newline
func FirstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r")
}

// JoinNonEmpty is like strings.Join but ignores empty elements
func JoinNonEmpty(elems []string, sep string) string {
	var nonEmpty []string
	for _, e := range elems {
		if e != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	return strings.Join(nonEmpty, sep)
}
