//go:build darwin

package hardware

import (
	"context"
)

func probeProductUUID(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		// minimal PATH under launchd and cron
		if out, err = runCommand(ctx, "/usr/sbin/ioreg", "-rd1", "-c", "IOPlatformExpertDevice"); err != nil {
			return "", err
		}
	}
	if id := parseIoregUUID(out); id != "" {
		return id, nil
	}
	return unavailable(SignalProductUUID)
}

func probeMachineGUID(context.Context) (string, error) {
	return unavailable(SignalMachineGUID)
}

func probeDriveSerial(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, "/usr/sbin/diskutil", "info", "/")
	if err != nil {
		return "", err
	}
	if id := parseDiskutilVolumeUUID(out); id != "" {
		return id, nil
	}
	return unavailable(SignalDriveSerial)
}
