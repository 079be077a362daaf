// Package hardware probes the machine for the raw signals an identifier is
// derived from. Every probe is best effort: a failing or panicking probe
// yields an absent signal and never an error to the caller.
package hardware

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"autonaver/internal/machineid"
)

// Signal names, also used as log and span attribute values.
const (
	SignalMachineGUID = "machine_guid"
	SignalProductUUID = "product_uuid"
	SignalDriveSerial = "drive_serial"
	SignalMAC         = "mac"
)

// minProductUUIDLength is the shortest normalized product UUID still trusted.
const minProductUUIDLength = 11

var productUUIDPlaceholders = map[string]struct{}{
	"none":              {},
	"null":              {},
	"unknown":           {},
	"notspecified":      {},
	"notapplicable":     {},
	"defaultstring":     {},
	"tobefilledbyoem":   {},
	"tobefilledbyoeme":  {},
	"systemproductname": {},
}

// Signal is one normalized hardware value. A signal with a value but without
// trust was observed and rejected; it must not feed identity generation.
type Signal struct {
	Name    string
	Value   string
	Trusted bool
}

// Present reports whether the signal may be used for identity generation.
func (s Signal) Present() bool {
	return s.Value != "" && s.Trusted
}

// HostInfo is the fallback composite used when no hardware signal is present.
type HostInfo struct {
	Hostname string
	Platform string
	Arch     string
}

// Signals is the result of one probe pass.
type Signals struct {
	MachineGUID Signal
	ProductUUID Signal
	DriveSerial Signal
	MAC         Signal
	Host        HostInfo
}

// Ordered returns the identity signals in hash order: machine GUID, product
// UUID, drive serial, network address. The order is part of the identifier
// format and must not change.
func (s Signals) Ordered() []Signal {
	return []Signal{s.MachineGUID, s.ProductUUID, s.DriveSerial, s.MAC}
}

// HashParts returns the values of the present signals in hash order.
func (s Signals) HashParts() []string {
	var parts []string
	for _, sig := range s.Ordered() {
		if sig.Present() {
			parts = append(parts, sig.Value)
		}
	}
	return parts
}

// FallbackParts returns the normalized host composite. Empty members are kept
// so the separator positions stay fixed.
func (s Signals) FallbackParts() []string {
	return []string{
		machineid.NormalizeToken(s.Host.Hostname),
		machineid.NormalizeToken(s.Host.Platform),
		machineid.NormalizeToken(s.Host.Arch),
	}
}

// Available returns the names of the present signals.
func (s Signals) Available() []string {
	var names []string
	for _, sig := range s.Ordered() {
		if sig.Present() {
			names = append(names, sig.Name)
		}
	}
	return names
}

// tokenSignal normalizes a raw value into a trusted signal, or an absent one
// when nothing alphanumeric is left.
func tokenSignal(name, raw string) Signal {
	token := machineid.NormalizeToken(raw)
	return Signal{Name: name, Value: token, Trusted: token != ""}
}

// productUUIDSignal classifies a firmware product UUID. Placeholder values
// shipped by OEMs and hypervisors are kept as untrusted.
func productUUIDSignal(raw string) Signal {
	raw = strings.TrimSpace(raw)
	token := machineid.NormalizeToken(raw)
	if parsed, err := uuid.Parse(raw); err == nil {
		if parsed == uuid.Nil {
			return Signal{Name: SignalProductUUID, Value: token}
		}
		token = machineid.NormalizeToken(parsed.String())
	}

	sig := Signal{Name: SignalProductUUID, Value: token}
	if token == "" {
		return sig
	}
	if _, placeholder := productUUIDPlaceholders[token]; placeholder {
		return sig
	}
	if strings.Trim(token, "0") == "" || strings.Trim(token, "f") == "" {
		return sig
	}
	if utf8.RuneCountInString(token) < minProductUUIDLength {
		return sig
	}
	sig.Trusted = true
	return sig
}
