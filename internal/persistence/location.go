package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"autonaver/internal/config"
)

const (
	// MachineIDFileName is the plain-text replica written to every directory.
	MachineIDFileName = "machine_id.txt"
	// LicenseFileName is the license record file name.
	LicenseFileName = config.LicenseFileName
	// NativeValueName is the value name used in the OS-native store.
	NativeValueName = "MachineId"
)

// Location is one replica slot for the machine identifier.
type Location interface {
	Name() string
	Read() (string, error)
	Write(value string) error
}

// FileLocation stores the identifier as the sole content of a text file.
type FileLocation struct {
	Path string
}

// Name returns the file path.
func (f FileLocation) Name() string {
	return f.Path
}

// Read returns the raw file content.
func (f FileLocation) Read() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write creates the parent directory when needed and replaces the file.
func (f FileLocation) Write(value string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(f.Path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// MachineIDFiles returns the machine_id.txt path inside each directory, in
// order, with duplicates removed.
func MachineIDFiles(dirs ...string) []string {
	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		paths = append(paths, filepath.Join(dir, MachineIDFileName))
	}
	return DedupePaths(paths)
}

// DedupePaths removes entries that resolve to the same absolute path, keeping
// the first occurrence. Comparison is case-insensitive on Windows.
func DedupePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := pathKey(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func pathKey(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if runtime.GOOS == "windows" {
		return strings.ToLower(abs)
	}
	return abs
}
