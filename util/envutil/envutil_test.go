package envutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetenv(t *testing.T) {
	var env []string

	env, err := Setenv(env, "foo", "foo")
	require.NoError(t, err)
	require.Equal(t, env, []string{"foo=foo"})

	env, err = Setenv(env, "foo", "bar")
	require.NoError(t, err)
	require.Equal(t, env, []string{"foo=bar"})

	env, err = Setenv(env, "bao", "bab")
	require.NoError(t, err)
	require.Equal(t, env, []string{"foo=bar", "bao=bab"})

	_, err = Setenv(env, "in=valid", "bab")
	require.Error(t, err)
}

func TestGetenv(t *testing.T) {
	var val string

	val = Getenv([]string{}, "foo")
	require.Equal(t, val, "")

	val = Getenv([]string{"foo=bar"}, "foo")
	require.Equal(t, val, "bar")

	val = Getenv([]string{"foobar=baz"}, "foo")
	require.Equal(t, val, "")
}

func TestCLocale(t *testing.T) {
	orig := []string{"LANG=de_DE.UTF-8", "LC_ALL=de_DE.UTF-8"}
	env, err := CLocale(orig)
	require.NoError(t, err)

	require.Equal(t, "C", Getenv(env, "LC_ALL"))
	require.Equal(t, "de_DE.UTF-8", Getenv(env, "LANG"))
	// The passed environment is left unchanged
	require.Equal(t, "de_DE.UTF-8", Getenv(orig, "LC_ALL"))
}
