package identity

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"autonaver/internal/hardware"
	"autonaver/internal/machineid"
	"autonaver/internal/persistence"
)

type staticProber struct {
	signals hardware.Signals
	calls   int
}

func (p *staticProber) Probe(context.Context) hardware.Signals {
	p.calls++
	return p.signals
}

type registeredID machineid.ID

func (r registeredID) RegisteredMachineID(context.Context) (machineid.ID, bool) {
	return machineid.Normalize(string(r))
}

func trusted(name, value string) hardware.Signal {
	return hardware.Signal{Name: name, Value: value, Trusted: true}
}

func workstationSignals() hardware.Signals {
	return hardware.Signals{
		MachineGUID: trusted(hardware.SignalMachineGUID, "6f1b2c3daaaabbbbcccc001122334455"),
		ProductUUID: trusted(hardware.SignalProductUUID, "4c4c4544004235108052b4c04f4e4d32"),
		DriveSerial: trusted(hardware.SignalDriveSerial, "a1b2c3d4"),
		MAC:         trusted(hardware.SignalMAC, "001a2b3c4d5e"),
		Host:        hardware.HostInfo{Hostname: "WORK-PC", Platform: "windows-19045", Arch: "amd64"},
	}
}

type fixture struct {
	dir     string
	primary string
	legacy  string
	store   *persistence.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		primary: filepath.Join(dir, "appdata", "Auto_Naver", persistence.MachineIDFileName),
		legacy:  filepath.Join(dir, "install", "setting", persistence.MachineIDFileName),
	}
	f.store = persistence.NewStore(nil, []string{f.primary, f.legacy}, nil)
	return f
}

func (f fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDeriveGolden(t *testing.T) {
	id, source := Derive(workstationSignals())
	assert.Equal(t, machineid.ID("NAVER-3de8314b70d0102fc4334d8a9fa85319"), id)
	assert.Equal(t, SourceGenerated, source)

	fallback := workstationSignals()
	fallback.MachineGUID = hardware.Signal{}
	fallback.ProductUUID = hardware.Signal{}
	fallback.DriveSerial = hardware.Signal{}
	fallback.MAC = hardware.Signal{}
	id, source = Derive(fallback)
	assert.Equal(t, machineid.ID("NAVER-fc734b55889f29ca93c632a8203962c3"), id)
	assert.Equal(t, SourceFallback, source)
}

func TestDeriveFallbackKeepsHangulHostnames(t *testing.T) {
	host := func(name string) hardware.Signals {
		return hardware.Signals{Host: hardware.HostInfo{Hostname: name, Platform: "Windows-10", Arch: "AMD64"}}
	}

	a, source := Derive(host("김철수-PC"))
	b, _ := Derive(host("이영희-PC"))

	assert.Equal(t, SourceFallback, source)
	assert.NotEqual(t, a, b)
	assert.Equal(t, []string{"김철수pc", "windows10", "amd64"}, host("김철수-PC").FallbackParts())
}

func TestDeriveIgnoresUntrustedSignals(t *testing.T) {
	base := workstationSignals()
	withRandomMAC := base
	withRandomMAC.MAC = hardware.Signal{Name: hardware.SignalMAC, Value: "021a2b3c4d5e"}
	withoutMAC := base
	withoutMAC.MAC = hardware.Signal{Name: hardware.SignalMAC}

	a, _ := Derive(withRandomMAC)
	b, _ := Derive(withoutMAC)
	assert.Equal(t, b, a)
}

func TestRandomizedAddressAloneFallsBackToHostComposite(t *testing.T) {
	signals := hardware.Signals{
		MAC:  hardware.Signal{Name: hardware.SignalMAC, Value: "0242ac110002"},
		Host: hardware.HostInfo{Hostname: "WORK-PC", Platform: "windows-19045", Arch: "amd64"},
	}

	id, source := Derive(signals)
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, machineid.ID("NAVER-fc734b55889f29ca93c632a8203962c3"), id)
}

func TestResolveGeneratesAndPersists(t *testing.T) {
	f := newFixture(t)
	prober := &staticProber{signals: workstationSignals()}

	res := NewResolver(nil, f.store, prober, nil).Resolve(context.Background())

	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, machineid.ID("NAVER-3de8314b70d0102fc4334d8a9fa85319"), res.ID)
	assert.Equal(t, res.ID.String(), f.read(t, f.primary))
	assert.Equal(t, res.ID.String(), f.read(t, f.legacy))
}

func TestResolveDeterministicAcrossIndependentMachines(t *testing.T) {
	const runs = 4
	results := make([]machineid.ID, runs)

	var g errgroup.Group
	for i := 0; i < runs; i++ {
		i := i
		f := newFixture(t)
		g.Go(func() error {
			prober := &staticProber{signals: workstationSignals()}
			results[i] = NewResolver(nil, f.store, prober, nil).Resolve(context.Background()).ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, id := range results[1:] {
		assert.Equal(t, results[0], id)
	}
}

func TestResolveStableUnderSignalDrift(t *testing.T) {
	f := newFixture(t)
	prober := &staticProber{signals: workstationSignals()}
	resolver := NewResolver(nil, f.store, prober, nil)

	first := resolver.Resolve(context.Background())
	require.Equal(t, SourceGenerated, first.Source)

	prober.signals.MAC = hardware.Signal{}
	prober.signals.MachineGUID = trusted(hardware.SignalMachineGUID, "ffffffff00000000ffffffff00000000")
	second := resolver.Resolve(context.Background())

	assert.Equal(t, SourceRecall, second.Source)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, prober.calls, "hardware is probed only once")
}

func TestResolveMigratesRegisteredIdentifier(t *testing.T) {
	f := newFixture(t)
	registered := "NAVER" + strings.Repeat("c", 32)
	other := "NAVER-" + strings.Repeat("d", 32)
	require.Equal(t, 2, f.store.WriteAll(context.Background(), machineid.MustNormalize(other)))

	prober := &staticProber{signals: workstationSignals()}
	res := NewResolver(registeredID(registered), f.store, prober, nil).Resolve(context.Background())

	want := machineid.MustNormalize(registered)
	assert.Equal(t, SourceMigration, res.Source)
	assert.Equal(t, want, res.ID)
	assert.Equal(t, want.String(), f.read(t, f.primary))
	assert.Equal(t, want.String(), f.read(t, f.legacy))
	assert.Zero(t, prober.calls)
}

func TestResolveIgnoresMalformedRegisteredIdentifier(t *testing.T) {
	f := newFixture(t)
	prober := &staticProber{signals: workstationSignals()}

	res := NewResolver(registeredID("192.168.0.10"), f.store, prober, nil).Resolve(context.Background())

	assert.Equal(t, SourceGenerated, res.Source)
}

func TestResolveMalformedStoredFileFallsThroughToGeneration(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.primary), 0755))
	require.NoError(t, os.WriteFile(f.primary, []byte("NAVER-"+strings.Repeat("a", 31)), 0644))

	res := NewResolver(nil, f.store, &staticProber{signals: workstationSignals()}, nil).Resolve(context.Background())

	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, res.ID.String(), f.read(t, f.primary), "corrupt replica is overwritten")
}

func TestResolveWithoutAnyWritableLocationStillReturnsID(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	store := persistence.NewStore(nil, []string{filepath.Join(blocker, persistence.MachineIDFileName)}, nil)

	res := NewResolver(nil, store, &staticProber{signals: workstationSignals()}, nil).Resolve(context.Background())

	assert.Equal(t, machineid.ID("NAVER-3de8314b70d0102fc4334d8a9fa85319"), res.ID)
}
