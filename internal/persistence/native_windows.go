//go:build windows

package persistence

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// registryLocation keeps the identifier under HKEY_CURRENT_USER, which
// survives reinstalls and needs no elevation.
type registryLocation struct {
	key   string
	value string
}

// NativeLocation returns the per-user registry slot Software\<appName>.
func NativeLocation(appName string) Location {
	return registryLocation{key: `Software\` + appName, value: NativeValueName}
}

func (r registryLocation) Name() string {
	return `HKCU\` + r.key + `\` + r.value
}

func (r registryLocation) Read() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, r.key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", r.key, err)
	}
	defer k.Close()

	s, _, err := k.GetStringValue(r.value)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.Name(), err)
	}
	return strings.TrimSpace(s), nil
}

func (r registryLocation) Write(value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, r.key, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.key, err)
	}
	defer k.Close()

	if err := k.SetStringValue(r.value, value); err != nil {
		return fmt.Errorf("write %s: %w", r.Name(), err)
	}
	return nil
}
