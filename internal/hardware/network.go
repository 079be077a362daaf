package hardware

import (
	"context"
	"encoding/hex"
	"net"
	"sort"
	"time"
)

const (
	// NoMACAddress is displayed when no adapter address can be read.
	NoMACAddress = "00:00:00:00:00:00"
	// LoopbackIP is reported when no outbound interface can be determined.
	LoopbackIP   = "127.0.0.1"

	localAddrProbe   = "8.8.8.8:80"
	localAddrTimeout = 2 * time.Second
)

// listInterfaces is replaced in tests.
var listInterfaces = net.Interfaces

// primaryAdapter returns the hardware address of the lowest indexed
// non-loopback interface that has a 48-bit address.
func primaryAdapter(ifaces []net.Interface) (net.HardwareAddr, bool) {
	sorted := make([]net.Interface, len(ifaces))
	copy(sorted, ifaces)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for _, iface := range sorted {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) != 6 {
			continue
		}
		return iface.HardwareAddr, true
	}
	return nil, false
}

// macSignal classifies an adapter address. Addresses with the locally
// administered bit set are software assigned and may change across reboots,
// so they are kept only as untrusted.
func macSignal(addr net.HardwareAddr) Signal {
	sig := Signal{Name: SignalMAC}
	if len(addr) != 6 || isZero(addr) {
		return sig
	}
	sig.Value = hex.EncodeToString(addr)
	sig.Trusted = addr[0]&0x02 == 0
	return sig
}

func isZero(addr net.HardwareAddr) bool {
	for _, b := range addr {
		if b != 0 {
			return false
		}
	}
	return true
}

// RawMACAddress returns the primary adapter address in colon form without the
// locally administered filter. It is meant for display and diagnostics only.
func RawMACAddress() string {
	ifaces, err := listInterfaces()
	if err != nil {
		return NoMACAddress
	}
	addr, ok := primaryAdapter(ifaces)
	if !ok {
		return NoMACAddress
	}
	return addr.String()
}

// LocalIP returns the address of the interface used for outbound traffic.
// A UDP dial sends no packets; it only selects a route.
func LocalIP(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, localAddrTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", localAddrProbe)
	if err != nil {
		return LoopbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return LoopbackIP
	}
	return addr.IP.String()
}
