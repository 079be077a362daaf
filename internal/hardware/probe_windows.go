//go:build windows

package hardware

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const (
	productUUIDQuery = "(Get-CimInstance -Class Win32_ComputerSystemProduct).UUID"
	driveSerialQuery = `(Get-CimInstance -Class Win32_LogicalDisk -Filter "DeviceID='C:'").VolumeSerialNumber`
)

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}

func powershell(ctx context.Context, query string) (string, error) {
	out, err := runCommand(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", query)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func probeProductUUID(ctx context.Context) (string, error) {
	return firstTrustedProductUUID(ctx,
		func(ctx context.Context) (string, error) {
			return powershell(ctx, productUUIDQuery)
		},
		func(ctx context.Context) (string, error) {
			out, err := runCommand(ctx, "wmic", "csproduct", "get", "uuid")
			if err != nil {
				return "", err
			}
			return parseWmicValue(out), nil
		},
	)
}

// probeMachineGUID reads the installation GUID from the 64-bit registry view so
// 32-bit builds see the same value.
func probeMachineGUID(context.Context) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Cryptography`, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return "", fmt.Errorf("open cryptography key: %w", err)
	}
	defer k.Close()

	s, _, err := k.GetStringValue("MachineGuid")
	if err != nil {
		return "", fmt.Errorf("read MachineGuid: %w", err)
	}
	return strings.TrimSpace(s), nil
}

func probeDriveSerial(ctx context.Context) (string, error) {
	return powershell(ctx, driveSerialQuery)
}

func osRelease() string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()

	build, _, err := k.GetStringValue("CurrentBuildNumber")
	if err != nil {
		return ""
	}
	return build
}
