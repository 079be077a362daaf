package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
)

// ProbeFunc reads one raw value from the platform. Implementations may fail;
// System converts any failure into an absent signal.
type ProbeFunc func(ctx context.Context) (string, error)

// Prober collects identity signals.
type Prober interface {
	Probe(ctx context.Context) Signals
}

// System probes the local machine. The zero value probes nothing; use
// NewSystem for the platform defaults.
type System struct {
	MachineGUID ProbeFunc
	ProductUUID ProbeFunc
	DriveSerial ProbeFunc
	Interfaces  func() ([]net.Interface, error)
	Hostname    func() (string, error)
	Platform    func() string
	Arch        string

	logger *slog.Logger
}

// NewSystem returns a System wired to the probes of the running platform.
func NewSystem(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		MachineGUID: probeMachineGUID,
		ProductUUID: probeProductUUID,
		DriveSerial: probeDriveSerial,
		Interfaces:  listInterfaces,
		Hostname:    os.Hostname,
		Platform:    platformString,
		Arch:        runtime.GOARCH,
		logger:      infrastructure.WithComponent(logger, "hardware_probe"),
	}
}

// Probe runs every provider once and classifies the results.
func (s *System) Probe(ctx context.Context) Signals {
	sigs := Signals{
		MachineGUID: tokenSignal(SignalMachineGUID, s.read(ctx, SignalMachineGUID, s.MachineGUID)),
		ProductUUID: productUUIDSignal(s.read(ctx, SignalProductUUID, s.ProductUUID)),
		DriveSerial: tokenSignal(SignalDriveSerial, s.read(ctx, SignalDriveSerial, s.DriveSerial)),
		MAC:         s.mac(ctx),
		Host:        s.host(ctx),
	}

	for _, sig := range sigs.Ordered() {
		if sig.Value != "" && !sig.Trusted {
			s.log().DebugContext(ctx, "Signal rejected",
				slog.String("signal", sig.Name),
				slog.String("result", "untrusted"))
		}
	}
	return sigs
}

// read calls fn and turns an error or panic into an empty value.
func (s *System) read(ctx context.Context, name string, fn ProbeFunc) (value string) {
	if fn == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			s.log().WarnContext(ctx, "Signal probe panicked",
				slog.String("signal", name),
				slog.Any("panic", r))
			value = ""
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		s.log().DebugContext(ctx, "Signal unavailable",
			slog.String("signal", name),
			slog.String("error", err.Error()))
		return ""
	}
	return v
}

func (s *System) mac(ctx context.Context) Signal {
	if s.Interfaces == nil {
		return Signal{Name: SignalMAC}
	}
	ifaces, err := s.Interfaces()
	if err != nil {
		s.log().DebugContext(ctx, "Signal unavailable",
			slog.String("signal", SignalMAC),
			slog.String("error", err.Error()))
		return Signal{Name: SignalMAC}
	}
	addr, ok := primaryAdapter(ifaces)
	if !ok {
		return Signal{Name: SignalMAC}
	}
	return macSignal(addr)
}

func (s *System) host(ctx context.Context) HostInfo {
	info := HostInfo{Arch: s.Arch}
	if s.Hostname != nil {
		if name, err := s.Hostname(); err == nil {
			info.Hostname = name
		}
	}
	if s.Platform != nil {
		info.Platform = s.read(ctx, "platform", func(context.Context) (string, error) {
			return s.Platform(), nil
		})
	}
	return info
}

func (s *System) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// unavailable is returned by probes the platform does not support.
func unavailable(name string) (string, error) {
	return "", fmt.Errorf("%s on %s: %w", name, runtime.GOOS, apperrors.ErrSignalUnavailable)
}
