package hardware

import (
	"context"
)

// UnknownValue is reported for a diagnostic field that could not be read.
const UnknownValue = "unknown"

// Diagnostics reads the informational fields stored next to a license. None
// of them takes part in identity generation.
type Diagnostics struct {
	prober Prober
}

// NewDiagnostics returns Diagnostics backed by prober. A nil prober leaves
// ProductID unknown.
func NewDiagnostics(prober Prober) *Diagnostics {
	return &Diagnostics{prober: prober}
}

// MACAddress returns the primary adapter address in colon form.
func (d *Diagnostics) MACAddress() string {
	return RawMACAddress()
}

// LocalIP returns the outbound interface address.
func (d *Diagnostics) LocalIP(ctx context.Context) string {
	return LocalIP(ctx)
}

// ProductID returns the normalized firmware product UUID when it is trusted.
func (d *Diagnostics) ProductID(ctx context.Context) string {
	if d == nil || d.prober == nil {
		return UnknownValue
	}
	sig := d.prober.Probe(ctx).ProductUUID
	if !sig.Present() {
		return UnknownValue
	}
	return sig.Value
}
