package envutil

import (
	"strings"

	"github.com/pkg/errors"
)

// Like os.Setenv but uses the specified environment instead of the
// current process environment.
func Setenv(env []string, key, value string) ([]string, error) {
	if strings.ContainsAny(key, "="+"\x00") {
		return nil, errors.Errorf("invalid key: %q", key)
	}

	if strings.ContainsRune(value, '\x00') {
		return nil, errors.Errorf("invalid value: %q", value)
	}

	kv := key + "=" + value

	// Check if the key is already set
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			// Replace the value
			env[i] = kv
			return env, nil
		}
	}

	// The key is not set yet, append it
	env = append(env, kv)
	return env, nil
}

// Getenv is like os.Getenv but uses the specified environment instead
// of the current process environment.
func Getenv(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

// CLocale returns a copy of env in which the locale is set to "C", so
// that tools print untranslated output which can be parsed.
func CLocale(env []string) ([]string, error) {
	return Setenv(append([]string(nil), env...), "LC_ALL", "C")
}
