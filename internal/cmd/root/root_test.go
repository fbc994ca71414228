package root

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cpso-tools/cpso/internal/bundler"
	"github.com/cpso-tools/cpso/internal/cmdutils"
	"github.com/cpso-tools/cpso/internal/elfmeta"
	"github.com/cpso-tools/cpso/internal/ldd"
	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/pkg/mocks"
)

var testOut *bytes.Buffer

func TestMain(m *testing.M) {
	// capture log output
	testOut = &bytes.Buffer{}
	oldOut := log.Output
	log.Output = testOut
	viper.Set("verbose", true)

	code := m.Run()

	log.Output = oldOut
	os.Exit(code)
}

type testEnv struct {
	root       string
	executable string
	targetDir  string
	reader     *mocks.ReaderMock
}

// newTestEnv creates an executable and a fake filesystem root with
// library directories below a temporary directory
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testOut.Reset()

	root := t.TempDir()
	env := &testEnv{
		root:       root,
		executable: filepath.Join(root, "bin", "app"),
		targetDir:  filepath.Join(root, "bundle"),
		reader:     &mocks.ReaderMock{},
	}
	for _, dir := range []string{"bin", "bundle", "lib", "lib64", "usr/lib64"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(env.executable, []byte("app"), 0o755))
	return env
}

func (env *testEnv) lib(t *testing.T, dir, soname string) string {
	t.Helper()
	path := filepath.Join(env.root, dir, soname)
	require.NoError(t, os.WriteFile(path, []byte(soname), 0o755))
	return path
}

func (env *testEnv) execute(t *testing.T, stdout io.Writer, args ...string) int {
	t.Helper()
	opts := &options{
		Stdout: stdout,
		reader: env.reader,
		searchPaths: ldd.SearchPaths{
			elfmeta.ELF32: {filepath.Join(env.root, "lib")},
			elfmeta.ELF64: {filepath.Join(env.root, "lib64"), filepath.Join(env.root, "usr", "lib64")},
		},
	}
	cmd := newWithOptions(opts)
	cmd.SetOut(testOut)
	cmd.SetErr(testOut)
	cmd.SetArgs(args)
	return Execute(context.Background(), cmd)
}

func TestBundle(t *testing.T) {
	env := newTestEnv(t)
	libA := env.lib(t, "usr/lib64", "libA.so")
	libB := env.lib(t, "lib64", "libB.so")
	libc := env.lib(t, "lib64", "libc.so.6")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so", "libB.so")
	env.reader.OnRead(libA, elfmeta.ELF64, "libc.so.6")
	env.reader.OnRead(libc, elfmeta.ELF64)
	env.reader.OnRead(libB, elfmeta.ELF64)

	stdout := &bytes.Buffer{}
	code := env.execute(t, stdout, env.executable, env.targetDir)
	require.Equal(t, 0, code, testOut.String())

	assert.FileExists(t, filepath.Join(env.targetDir, "libA.so"))
	assert.FileExists(t, filepath.Join(env.targetDir, "libB.so"))
	assert.NoFileExists(t, filepath.Join(env.targetDir, "libc.so.6"))

	assert.Contains(t, testOut.String(), `cpso: "libA.so" copied from "`+libA+`"`)
	assert.Contains(t, testOut.String(), `cpso: "libc.so.6" is blacklisted, skipping`)
	// Stdout is reserved for --report and --list
	assert.Empty(t, stdout.String())
	env.reader.AssertExpectations(t)
}

func TestBundle_DefaultTargetDirIsWorkingDir(t *testing.T) {
	env := newTestEnv(t)
	env.lib(t, "lib64", "libA.so")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so")
	env.reader.OnRead(filepath.Join(env.root, "lib64", "libA.so"), elfmeta.ELF64)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(env.targetDir))
	defer func() { _ = os.Chdir(wd) }()

	code := env.execute(t, &bytes.Buffer{}, env.executable)
	require.Equal(t, 0, code, testOut.String())
	assert.FileExists(t, filepath.Join(env.targetDir, "libA.so"))
}

func TestBundle_Unresolved(t *testing.T) {
	env := newTestEnv(t)
	libA := env.lib(t, "lib64", "libA.so")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so", "libmissing.so.2")
	env.reader.OnRead(libA, elfmeta.ELF64)

	code := env.execute(t, &bytes.Buffer{}, env.executable, env.targetDir)
	assert.Equal(t, 1, code)
	assert.Contains(t, testOut.String(), `cpso: unable to resolve "libmissing.so.2"`)

	// Nothing is copied if the resolution fails
	entries, err := os.ReadDir(env.targetDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBundle_FormatError(t *testing.T) {
	env := newTestEnv(t)
	env.reader.On("Read", mock.Anything, env.executable).
		Return(nil, &elfmeta.FormatError{Path: env.executable, FormatString: "mach-o-x86-64"})

	code := env.execute(t, &bytes.Buffer{}, env.executable, env.targetDir)
	assert.Equal(t, 1, code)
	assert.Contains(t, testOut.String(), `unrecognized file format "mach-o-x86-64"`)
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	libA := env.lib(t, "lib64", "libA.so")
	libc := env.lib(t, "lib64", "libc.so.6")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so")
	env.reader.OnRead(libA, elfmeta.ELF64, "libc.so.6")
	env.reader.OnRead(libc, elfmeta.ELF64)

	stdout := &bytes.Buffer{}
	code := env.execute(t, stdout, "--list", env.executable, env.targetDir)
	require.Equal(t, 0, code, testOut.String())

	assert.Equal(t, "libA.so => "+libA+"\nlibc.so.6 => "+libc+"\n", stdout.String())
	entries, err := os.ReadDir(env.targetDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	libA := env.lib(t, "lib64", "libA.so")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so")
	env.reader.OnRead(libA, elfmeta.ELF64)

	stdout := &bytes.Buffer{}
	code := env.execute(t, stdout, "--report", "json", "--dry-run", env.executable, env.targetDir)
	require.Equal(t, 0, code, testOut.String())

	var report bundler.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, env.executable, report.Executable)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, bundler.StatusSkipped, report.Entries[0].Status)
	assert.NoFileExists(t, filepath.Join(env.targetDir, "libA.so"))
}

func TestReport_ConfiguredViaEnv(t *testing.T) {
	env := newTestEnv(t)
	libA := env.lib(t, "lib64", "libA.so")
	env.reader.OnRead(env.executable, elfmeta.ELF64, "libA.so")
	env.reader.OnRead(libA, elfmeta.ELF64)
	t.Setenv("CPSO_DRY_RUN", "true")
	t.Setenv("CPSO_REPORT", "yaml")

	stdout := &bytes.Buffer{}
	code := env.execute(t, stdout, env.executable, env.targetDir)
	require.Equal(t, 0, code, testOut.String())

	assert.Contains(t, stdout.String(), "soname: libA.so")
	assert.Contains(t, stdout.String(), "status: skipped")
	assert.NoFileExists(t, filepath.Join(env.targetDir, "libA.so"))
}

func TestHelp(t *testing.T) {
	env := newTestEnv(t)

	// --help wins over invalid arguments
	for _, args := range [][]string{{"--help"}, {"--help", "/does/not/exist"}, {"-h"}} {
		testOut.Reset()
		code := env.execute(t, &bytes.Buffer{}, args...)
		assert.Equal(t, 0, code)
		assert.Contains(t, testOut.String(), "bundling the .so files needed by binary executables")
	}
	env.reader.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	code := env.execute(t, &bytes.Buffer{}, "--version", "/does/not/exist")
	assert.Equal(t, 0, code)
	assert.Equal(t, "cpso v.2.0 by suve\n", testOut.String())
}

func TestUsageErrors(t *testing.T) {
	env := newTestEnv(t)

	type test struct {
		desc     string
		args     []string
		expected string
	}
	tests := []test{
		{desc: "missing executable", args: nil, expected: "EXECUTABLE is missing"},
		{desc: "nonexistent executable", args: []string{filepath.Join(env.root, "missing")}, expected: "does not exist"},
		{desc: "executable is a directory", args: []string{env.targetDir}, expected: "does not exist"},
		{desc: "nonexistent target dir", args: []string{env.executable, filepath.Join(env.root, "missing")}, expected: "does not exist"},
		{desc: "too many arguments", args: []string{env.executable, env.targetDir, "extra"}, expected: "too many arguments"},
		{desc: "unknown flag", args: []string{"--unknown", env.executable}, expected: "unknown flag"},
		{desc: "invalid reader", args: []string{"--reader", "readelf", env.executable}, expected: "--reader"},
		{desc: "invalid report format", args: []string{"--report", "toml", env.executable}, expected: "--report"},
		{desc: "no jobs", args: []string{"--jobs", "0", env.executable, env.targetDir}, expected: "--jobs"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			testOut.Reset()
			code := env.execute(t, &bytes.Buffer{}, tc.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, testOut.String(), tc.expected)
			assert.Contains(t, testOut.String(), "Usage: cpso [flags] EXECUTABLE [TARGET-DIR]")
		})
	}

	// No binary is read when the arguments are invalid
	env.reader.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
}

func TestExecuteCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := cmdutils.ExecuteCommand(t, newWithOptions(&options{reader: env.reader}), os.Stdin)
	var usageErr *cmdutils.IncorrectUsageError
	assert.ErrorAs(t, err, &usageErr)
}
