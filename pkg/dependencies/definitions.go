package dependencies

import (
	"os/exec"

	"github.com/Masterminds/semver"
)

type Dependencies map[Key]*Dependency

// Define returns the definitions of all known dependencies. objdump is
// the path or name of the objdump executable to check.
func Define(objdump string) Dependencies {
	return Dependencies{
		Objdump: {
			Key:  Objdump,
			Path: objdump,
			// The "file format" line and the dynamic section have
			// been printed by `objdump -x` since binutils 2.0
			MinVersion: *semver.MustParse("2.0.0"),
			GetVersion: objdumpVersion,
			Installed: func(dep *Dependency) bool {
				_, err := exec.LookPath(dep.Path)
				return err == nil
			},
		},
	}
}
