//go:build linux

package hardware

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dmiProductUUIDPath = "/sys/class/dmi/id/product_uuid"
	diskByUUIDDir      = "/dev/disk/by-uuid"
	mountsPath         = "/proc/mounts"
)

// machineIDPaths are the systemd and dbus machine-id locations.
var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

func readFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func probeProductUUID(context.Context) (string, error) {
	return readFileString(dmiProductUUIDPath)
}

func probeMachineGUID(context.Context) (string, error) {
	for _, p := range machineIDPaths {
		if id, err := readFileString(p); err == nil && id != "" {
			return id, nil
		}
	}
	return unavailable(SignalMachineGUID)
}

// probeDriveSerial returns the filesystem UUID of the root partition.
func probeDriveSerial(context.Context) (string, error) {
	mounts, err := readFileString(mountsPath)
	if err != nil {
		return "", err
	}
	device := parseRootDevice(mounts)
	if device == "" {
		return unavailable(SignalDriveSerial)
	}
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		device = resolved
	}

	entries, err := os.ReadDir(diskByUUIDDir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", diskByUUIDDir, err)
	}
	for _, entry := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(diskByUUIDDir, entry.Name()))
		if err != nil {
			continue
		}
		if target == device {
			return entry.Name(), nil
		}
	}
	return unavailable(SignalDriveSerial)
}
