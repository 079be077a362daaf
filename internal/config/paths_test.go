package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T, goos string, vars map[string]string) pathEnv {
	t.Helper()
	home := t.TempDir()
	return pathEnv{
		goos:          goos,
		getenv:        func(k string) string { return vars[k] },
		executable:    func() (string, error) { return filepath.Join(home, "app", "v2.1", "autonaver.exe"), nil },
		userConfigDir: func() (string, error) { return filepath.Join(home, ".config"), nil },
		userHomeDir:   func() (string, error) { return home, nil },
		mkdirAll:      os.MkdirAll,
	}
}

func TestResolvePathsWindowsPrefersAppData(t *testing.T) {
	root := t.TempDir()
	appData := filepath.Join(root, "Roaming")
	programData := filepath.Join(root, "ProgramData")
	env := testEnv(t, "windows", map[string]string{
		"APPDATA":     appData,
		"PROGRAMDATA": programData,
	})

	p, err := resolvePaths(PathsConfig{}, env)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(appData, AppName), p.StateDir)
	assert.DirExists(t, p.StateDir)
	assert.Equal(t, filepath.Join(programData, AppName), p.SharedDir)
	assert.Equal(t, filepath.Join(p.BaseDir, LegacyDirName), p.LegacyDir)
	assert.Equal(t, []string{p.StateDir, p.LegacyDir, p.SharedDir}, p.IdentityDirs())
	assert.Equal(t, filepath.Join(appData, AppName, "license.json"), p.LicenseFile())
	assert.Equal(t, filepath.Join(p.LegacyDir, LicenseFileName), p.LegacyLicenseFile())
	assert.Equal(t, filepath.Join(p.StateDir, LogsDirName, LogFileName), p.LogFile())
}

func TestResolvePathsWindowsSkipsUncreatableRoots(t *testing.T) {
	root := t.TempDir()
	blocked := filepath.Join(root, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("file"), 0644))
	local := filepath.Join(root, "Local")
	env := testEnv(t, "windows", map[string]string{
		"APPDATA":      blocked,
		"LOCALAPPDATA": local,
	})

	p, err := resolvePaths(PathsConfig{}, env)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(local, AppName), p.StateDir)
	assert.Empty(t, p.SharedDir)
	assert.Equal(t, []string{p.StateDir, p.LegacyDir}, p.IdentityDirs())
}

func TestResolvePathsUnixUsesUserConfigDir(t *testing.T) {
	env := testEnv(t, "linux", nil)

	p, err := resolvePaths(PathsConfig{}, env)
	require.NoError(t, err)

	cfgDir, _ := env.userConfigDir()
	assert.Equal(t, filepath.Join(cfgDir, AppName), p.StateDir)
	assert.Empty(t, p.SharedDir)
}

func TestResolvePathsUnixFallsBackToHome(t *testing.T) {
	env := testEnv(t, "linux", nil)
	env.userConfigDir = func() (string, error) { return "", errors.New("unset XDG_CONFIG_HOME") }

	p, err := resolvePaths(PathsConfig{}, env)
	require.NoError(t, err)

	home, _ := env.userHomeDir()
	assert.Equal(t, filepath.Join(home, AppName), p.StateDir)
}

func TestResolvePathsFallsBackToLegacyDir(t *testing.T) {
	env := testEnv(t, "linux", nil)
	env.userConfigDir = func() (string, error) { return "", errors.New("no home") }
	env.userHomeDir = func() (string, error) { return "", errors.New("no home") }

	p, err := resolvePaths(PathsConfig{BaseDir: "/opt/autonaver"}, env)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/autonaver", LegacyDirName), p.StateDir)
	assert.Equal(t, p.LegacyDir, p.StateDir)
}

func TestResolvePathsOverrides(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state")
	env := testEnv(t, "linux", nil)

	p, err := resolvePaths(PathsConfig{BaseDir: "/opt/autonaver", StateDir: state}, env)
	require.NoError(t, err)

	assert.Equal(t, "/opt/autonaver", p.BaseDir)
	assert.Equal(t, state, p.StateDir)
	assert.DirExists(t, state)
}

func TestResolvePathsExecutableError(t *testing.T) {
	env := testEnv(t, "linux", nil)
	env.executable = func() (string, error) { return "", errors.New("proc unavailable") }

	_, err := resolvePaths(PathsConfig{}, env)
	assert.ErrorContains(t, err, "failed to get executable path")
}
