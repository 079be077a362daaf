//go:build !linux && !windows && !darwin

package hardware

import "context"

func probeProductUUID(context.Context) (string, error) {
	return unavailable(SignalProductUUID)
}

func probeMachineGUID(context.Context) (string, error) {
	return unavailable(SignalMachineGUID)
}

func probeDriveSerial(context.Context) (string, error) {
	return unavailable(SignalDriveSerial)
}

func osRelease() string {
	return ""
}
