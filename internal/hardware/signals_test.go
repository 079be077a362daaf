package hardware

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "autonaver/internal/errors"
)

func staticProbe(value string) ProbeFunc {
	return func(context.Context) (string, error) { return value, nil }
}

func failingProbe(err error) ProbeFunc {
	return func(context.Context) (string, error) { return "", err }
}

func iface(index int, mac string, flags net.Flags) net.Interface {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		panic(err)
	}
	return net.Interface{Index: index, Name: "eth", HardwareAddr: hw, Flags: flags}
}

func interfaces(list ...net.Interface) func() ([]net.Interface, error) {
	return func() ([]net.Interface, error) { return list, nil }
}

func TestProductUUIDSignal(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantValue   string
		wantTrusted bool
	}{
		{"real uuid", "4C4C4544-0042-3510-8052-B4C04F4E4D32\r\n", "4c4c4544004235108052b4c04f4e4d32", true},
		{"braced uuid", "{4C4C4544-0042-3510-8052-B4C04F4E4D32}", "4c4c4544004235108052b4c04f4e4d32", true},
		{"urn uuid", "urn:uuid:4c4c4544-0042-3510-8052-b4c04f4e4d32", "4c4c4544004235108052b4c04f4e4d32", true},
		{"all zero", "00000000-0000-0000-0000-000000000000", "00000000000000000000000000000000", false},
		{"all f", "FFFFFFFF-FFFF-FFFF-FFFF-FFFFFFFFFFFF", "ffffffffffffffffffffffffffffffff", false},
		{"oem template", "To be filled by O.E.M.", "tobefilledbyoem", false},
		{"default string", "Default string", "defaultstring", false},
		{"too short", "ABC-123", "abc123", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := productUUIDSignal(tt.raw)
			assert.Equal(t, SignalProductUUID, sig.Name)
			assert.Equal(t, tt.wantValue, sig.Value)
			assert.Equal(t, tt.wantTrusted, sig.Trusted)
			assert.Equal(t, tt.wantTrusted, sig.Present())
		})
	}
}

func TestMACSignal(t *testing.T) {
	tests := []struct {
		name        string
		mac         string
		wantValue   string
		wantTrusted bool
	}{
		{"burned in", "00:1a:2b:3c:4d:5e", "001a2b3c4d5e", true},
		{"locally administered", "02:1a:2b:3c:4d:5e", "021a2b3c4d5e", false},
		{"randomized wifi", "da:a1:19:00:00:01", "daa119000001", false},
		{"all zero", "00:00:00:00:00:00", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw, err := net.ParseMAC(tt.mac)
			require.NoError(t, err)

			sig := macSignal(hw)
			assert.Equal(t, tt.wantValue, sig.Value)
			assert.Equal(t, tt.wantTrusted, sig.Trusted)
		})
	}
}

func TestPrimaryAdapterSkipsLoopbackAndPicksLowestIndex(t *testing.T) {
	lo := net.Interface{Index: 1, Name: "lo", Flags: net.FlagLoopback}
	second := iface(3, "00:11:22:33:44:66", net.FlagUp)
	first := iface(2, "00:11:22:33:44:55", net.FlagUp)
	wide := net.Interface{Index: 0, Name: "ib0", HardwareAddr: make(net.HardwareAddr, 20)}

	addr, ok := primaryAdapter([]net.Interface{second, lo, wide, first})
	require.True(t, ok)
	assert.Equal(t, "00:11:22:33:44:55", addr.String())

	_, ok = primaryAdapter([]net.Interface{lo})
	assert.False(t, ok)
}

func TestSystemProbeCollectsSignals(t *testing.T) {
	sys := &System{
		MachineGUID: staticProbe("6F1B2C3D-AAAA-BBBB-CCCC-001122334455"),
		ProductUUID: staticProbe("4C4C4544-0042-3510-8052-B4C04F4E4D32"),
		DriveSerial: staticProbe("A1B2-C3D4"),
		Interfaces:  interfaces(iface(2, "00:1a:2b:3c:4d:5e", net.FlagUp)),
		Hostname:    func() (string, error) { return "WORK-PC", nil },
		Platform:    func() string { return "windows-19045" },
		Arch:        "amd64",
	}

	sigs := sys.Probe(context.Background())

	assert.Equal(t, []string{
		"6f1b2c3daaaabbbbcccc001122334455",
		"4c4c4544004235108052b4c04f4e4d32",
		"a1b2c3d4",
		"001a2b3c4d5e",
	}, sigs.HashParts())
	assert.Equal(t, []string{SignalMachineGUID, SignalProductUUID, SignalDriveSerial, SignalMAC}, sigs.Available())
	assert.Equal(t, []string{"workpc", "windows19045", "amd64"}, sigs.FallbackParts())
}

func TestSystemProbeSwallowsFailures(t *testing.T) {
	sys := &System{
		MachineGUID: failingProbe(apperrors.ErrSignalUnavailable),
		ProductUUID: func(context.Context) (string, error) { panic("wmi exploded") },
		DriveSerial: failingProbe(errors.New("access denied")),
		Interfaces:  func() ([]net.Interface, error) { return nil, errors.New("netlink") },
		Hostname:    func() (string, error) { return "", errors.New("no hostname") },
		Platform:    func() string { panic("uname") },
		Arch:        "arm64",
	}

	var sigs Signals
	require.NotPanics(t, func() { sigs = sys.Probe(context.Background()) })

	assert.Empty(t, sigs.HashParts())
	assert.Equal(t, []string{"", "", "arm64"}, sigs.FallbackParts())
}

func TestRandomizedAddressNeverReachesHashParts(t *testing.T) {
	sys := &System{
		Interfaces: interfaces(iface(1, "02:42:ac:11:00:02", net.FlagUp)),
		Hostname:   func() (string, error) { return "container", nil },
		Arch:       "amd64",
	}

	sigs := sys.Probe(context.Background())

	assert.Equal(t, "0242ac110002", sigs.MAC.Value)
	assert.False(t, sigs.MAC.Present())
	assert.Empty(t, sigs.HashParts())
	assert.NotContains(t, sigs.FallbackParts(), "0242ac110002")
}

func TestZeroSystemProbesNothing(t *testing.T) {
	var sys System
	sigs := sys.Probe(context.Background())

	assert.Empty(t, sigs.HashParts())
	assert.Equal(t, []string{"", "", ""}, sigs.FallbackParts())
}

func TestNewSystemWiresPlatformDefaults(t *testing.T) {
	sys := NewSystem(nil)

	assert.NotNil(t, sys.MachineGUID)
	assert.NotNil(t, sys.ProductUUID)
	assert.NotNil(t, sys.DriveSerial)
	assert.NotNil(t, sys.Interfaces)
	assert.NotEmpty(t, sys.Arch)
}
