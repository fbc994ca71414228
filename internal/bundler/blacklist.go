package bundler

import "strings"

// Blacklist contains substrings of sonames of libraries which are
// assumed to be present on every system and are therefore never copied
type Blacklist []string

// Matches returns true if soname contains any of the blacklist entries
func (b Blacklist) Matches(soname string) bool {
	for _, entry := range b {
		if strings.Contains(soname, entry) {
			return true
		}
	}
	return false
}
