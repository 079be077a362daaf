package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/machineid"
	"autonaver/internal/persistence"
)

// Info display values.
const (
	InfoRegistered   = "등록됨"
	InfoUnregistered = "미등록"
	NotAvailable     = "N/A"
)

var validate = validator.New()

// registration is the operator input accepted by Register.
type registration struct {
	LicenseKey string `validate:"required,max=256"`
}

// Register writes a license record holding licenseKey and the current
// machine identifier. The record is not confirmed until a later Verify
// reaches ACTIVE.
func (v *Verifier) Register(ctx context.Context, licenseKey string) (persistence.LicenseRecord, error) {
	input := registration{LicenseKey: strings.TrimSpace(licenseKey)}
	if err := validate.Struct(input); err != nil {
		v.logAction(ctx, slog.LevelWarn, "register", "rejected", slog.String("error", err.Error()))
		return persistence.LicenseRecord{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidLicenseKey, err)
	}

	resolution := v.resolver.Resolve(ctx)
	rec := v.newRecord(ctx, input.LicenseKey, resolution.ID)

	err := v.records.Save(ctx, rec)
	v.metrics.recordWrite(ctx, "registered", err == nil)
	if err != nil {
		v.logAction(ctx, slog.LevelError, "register", "failure", slog.String("error", err.Error()))
		return persistence.LicenseRecord{}, err
	}

	v.logAction(ctx, slog.LevelInfo, "register", "success",
		slog.String("machine_id", resolution.ID.Short(shortIDLength)),
		slog.String("license_key", maskKey(input.LicenseKey)))
	return rec, nil
}

// Info is a display summary of the machine's registration.
type Info struct {
	Status     string
	Registered bool
	// Reachable is false when the registry returned nothing.
	Reachable  bool
	Name       string
	Email      string
	MachineID  machineid.ID
	MACAddress string
	LocalIP    string
	ExpiryDate string
}

// Info looks the current identifier up in a fresh snapshot. It does not
// evaluate expiry and never writes the license record.
func (v *Verifier) Info(ctx context.Context) Info {
	resolution := v.resolver.Resolve(ctx)
	snapshot := v.fetch(ctx)

	info := Info{
		Status:     InfoUnregistered,
		Reachable:  !snapshot.Empty(),
		Name:       NotAvailable,
		Email:      NotAvailable,
		MachineID:  resolution.ID,
		MACAddress: v.diagnostics.MACAddress(),
		LocalIP:    v.diagnostics.LocalIP(ctx),
		ExpiryDate: NotAvailable,
	}

	buyer, ok := snapshot.Lookup(resolution.ID)
	if !ok {
		return info
	}
	info.Status = InfoRegistered
	info.Registered = true
	info.Name = orNotAvailable(buyer.Name)
	info.Email = orNotAvailable(buyer.Email)
	info.ExpiryDate = orNotAvailable(buyer.ExpiryDate)
	return info
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
