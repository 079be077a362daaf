package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths holds every directory the license state is read from or written to.
type Paths struct {
	// BaseDir is the directory of the executable.
	BaseDir string
	// StateDir survives upgrades; it holds the primary copies.
	StateDir string
	// LegacyDir is BaseDir/setting, used by older builds.
	LegacyDir string
	// SharedDir is the machine-wide %PROGRAMDATA%\Auto_Naver copy on Windows.
	SharedDir string
	LogsDir   string
}

// LicenseFile is the primary license record.
func (p *Paths) LicenseFile() string {
	return filepath.Join(p.StateDir, LicenseFileName)
}

// LegacyLicenseFile is the license record older builds wrote.
func (p *Paths) LegacyLicenseFile() string {
	return filepath.Join(p.LegacyDir, LicenseFileName)
}

// IdentityDirs returns the directories holding machine_id.txt, in read order.
func (p *Paths) IdentityDirs() []string {
	dirs := []string{p.StateDir, p.LegacyDir}
	if p.SharedDir != "" {
		dirs = append(dirs, p.SharedDir)
	}
	return dirs
}

// LogFile returns the default log file path.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogsDir, LogFileName)
}

// pathEnv abstracts the process environment for tests.
type pathEnv struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userHomeDir   func() (string, error)
	mkdirAll      func(string, os.FileMode) error
}

func osPathEnv() pathEnv {
	return pathEnv{
		goos:          runtime.GOOS,
		getenv:        os.Getenv,
		executable:    os.Executable,
		userConfigDir: os.UserConfigDir,
		userHomeDir:   os.UserHomeDir,
		mkdirAll:      os.MkdirAll,
	}
}

// ResolvePaths resolves the directories once at startup. The state directory
// is created; the others are created on first write.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	return resolvePaths(cfg, osPathEnv())
}

func resolvePaths(cfg PathsConfig, env pathEnv) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exe, err := env.executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		base = filepath.Dir(exe)
	}

	p := &Paths{
		BaseDir:   base,
		LegacyDir: filepath.Join(base, LegacyDirName),
	}

	if cfg.StateDir != "" {
		if err := env.mkdirAll(cfg.StateDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory %s: %w", cfg.StateDir, err)
		}
		p.StateDir = cfg.StateDir
	} else {
		p.StateDir = firstCreatable(env, stateRoots(env), p.LegacyDir)
	}

	if env.goos == "windows" {
		if programData := strings.TrimSpace(env.getenv("PROGRAMDATA")); programData != "" {
			p.SharedDir = filepath.Join(programData, AppName)
		}
	}

	p.LogsDir = filepath.Join(p.StateDir, LogsDirName)
	return p, nil
}

// stateRoots lists the parent directories tried for the state directory.
func stateRoots(env pathEnv) []string {
	var roots []string
	if env.goos == "windows" {
		for _, key := range []string{"APPDATA", "LOCALAPPDATA", "PROGRAMDATA"} {
			roots = append(roots, strings.TrimSpace(env.getenv(key)))
		}
		if home, err := env.userHomeDir(); err == nil {
			roots = append(roots, home)
		}
		return roots
	}
	if dir, err := env.userConfigDir(); err == nil {
		roots = append(roots, dir)
	}
	if home, err := env.userHomeDir(); err == nil {
		roots = append(roots, home)
	}
	return roots
}

func firstCreatable(env pathEnv, roots []string, fallback string) string {
	for _, root := range roots {
		if root == "" {
			continue
		}
		dir := filepath.Join(root, AppName)
		if err := env.mkdirAll(dir, 0755); err != nil {
			slog.Debug("State directory candidate rejected",
				slog.String("directory", dir),
				slog.String("error", err.Error()))
			continue
		}
		return dir
	}
	return fallback
}

// LogPathResolution logs the resolved directories at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.Group("paths",
			slog.String("base_dir", p.BaseDir),
			slog.String("state_dir", p.StateDir),
			slog.String("legacy_dir", p.LegacyDir),
			slog.String("shared_dir", p.SharedDir),
			slog.String("logs_dir", p.LogsDir),
		))
}
