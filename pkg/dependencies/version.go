package dependencies

import (
	"os"
	"regexp"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/internal/cmdutils"
	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/util/envutil"
	"github.com/cpso-tools/cpso/util/executil"
	"github.com/cpso-tools/cpso/util/regexutil"
)

/*
Note: we made the "patch" part of the semver (when parsing the output with regex) optional
be more lenient when a command returns something like 1.2 instead of 1.2.0
*/
var objdumpRegex = regexp.MustCompile(`(?m)(?:GNU objdump.*?|LLVM version) (?P<version>\d+\.\d+(\.\d+)?)`)

func objdumpVersion(dep *Dependency) (*semver.Version, error) {
	version, err := getVersionFromCommand(dep.Path, []string{"--version"}, objdumpRegex, dep.Key)
	if err != nil {
		return nil, err
	}
	log.Debugf("Found objdump version %s: %s", version, dep.Path)
	return version, nil
}

// takes a command + args and parses the output for a semver
func getVersionFromCommand(cmdPath string, args []string, re *regexp.Regexp, key Key) (*semver.Version, error) {
	cmd := executil.Command(cmdPath, args...)
	env, err := envutil.CLocale(os.Environ())
	if err != nil {
		return nil, err
	}
	cmd.Env = env
	stdout, stderr, err := cmd.Capture()
	if err != nil {
		return nil, errors.WithStack(cmdutils.WrapExecError(err, cmd.Cmd))
	}
	return extractVersion(string(stdout)+string(stderr), re, key)
}

func extractVersion(output string, re *regexp.Regexp, key Key) (*semver.Version, error) {
	result, found := regexutil.FindNamedGroupsMatch(re, output)
	if !found || result["version"] == "" {
		return nil, errors.Errorf("No matching version string for %s", key)
	}

	version, err := semver.NewVersion(result["version"])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return version, nil
}
