package hardware

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"autonaver/internal/machineid"
)

const commandTimeout = 5 * time.Second

// runCommand is replaced in tests.
var runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	hideWindow(cmd)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.String(), nil
}

// platformString returns GOOS and the kernel or build release, e.g.
// "linux-6.8.0-45-generic".
func platformString() string {
	release := osRelease()
	if release == "" {
		return runtime.GOOS
	}
	return runtime.GOOS + "-" + release
}

// parseIoregUUID extracts IOPlatformUUID from `ioreg -rd1 -c IOPlatformExpertDevice`.
func parseIoregUUID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "IOPlatformUUID") {
			continue
		}
		parts := strings.SplitAfter(line, `" = "`)
		if len(parts) == 2 {
			return strings.TrimRight(strings.TrimSpace(parts[1]), `"`)
		}
	}
	return ""
}

// parseWmicValue returns the first non-empty line after the column header of
// `wmic ... get <column>` output.
func parseWmicValue(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	header := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		return line
	}
	return ""
}

// parseRootDevice returns the block device mounted at / from /proc/mounts.
func parseRootDevice(mounts string) string {
	for _, line := range strings.Split(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "/" && strings.HasPrefix(fields[0], "/dev/") {
			return fields[0]
		}
	}
	return ""
}

// parseDiskutilVolumeUUID extracts the volume UUID from `diskutil info /`.
func parseDiskutilVolumeUUID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "Volume UUID" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// firstTrustedProductUUID runs the queries in order and returns the first
// output that classifies as a trusted product UUID. When every query answered
// with a placeholder, the last answer is returned so it is logged as rejected.
func firstTrustedProductUUID(ctx context.Context, queries ...func(context.Context) (string, error)) (string, error) {
	var last string
	var lastErr error
	for _, query := range queries {
		out, err := query(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if productUUIDSignal(out).Present() {
			return out, nil
		}
		if machineid.NormalizeToken(out) != "" {
			last = out
		}
	}
	if last != "" {
		return last, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return unavailable(SignalProductUUID)
}
