package dependencies

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver"

	"github.com/cpso-tools/cpso/pkg/log"
)

var ErrDeps = errors.New(`Unable to run command due to missing/invalid dependencies.
Install GNU Binutils or use --reader=native to read binaries without objdump.`)

type Key string

const (
	Objdump Key = "objdump"

	MessageVersion = "cpso requires %s %s or higher, have %s"
	MessageMissing = "cpso requires %s, but it is not installed"
)

// Dependency represents a single dependency
type Dependency struct {
	Key Key
	// Path or name of the executable
	Path       string
	MinVersion semver.Version
	// these fields are used to implement custom logic to
	// retrieve version or installation information for the
	// specific dependency
	GetVersion func(*Dependency) (*semver.Version, error)
	Installed  func(*Dependency) bool
}

// Compares MinVersion against GetVersion
func (dep *Dependency) checkVersion() bool {
	currentVersion, err := dep.GetVersion(dep)
	if err != nil {
		log.Warnf("Unable to get current version for %s, message: %v", dep.Key, err)
		// we want to be lenient if we were not able to extract the version
		return true
	}

	if currentVersion.Compare(&dep.MinVersion) == -1 {
		log.Warnf(MessageVersion, dep.Key, dep.MinVersion.String(), currentVersion.String())
		return false
	}
	return true
}

// Check iterates over a list of dependencies and checks if they are
// fulfilled
func Check(keys []Key, deps Dependencies) error {
	allFine := true
	for _, key := range keys {
		dep, found := deps[key]
		if !found {
			panic(fmt.Sprintf("Undefined dependency %s", key))
		}

		if !dep.Installed(dep) {
			log.Warnf(MessageMissing, dep.Key)
			allFine = false
			continue
		}

		log.Debugf("Checking dependency: %s version >= %s", dep.Key, dep.MinVersion.String())
		if !dep.checkVersion() {
			allFine = false
		}
	}

	if !allFine {
		return ErrDeps
	}
	return nil
}
