package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/hardware"
	"autonaver/internal/identity"
	"autonaver/internal/infrastructure"
	"autonaver/internal/machineid"
	"autonaver/internal/persistence"
	"autonaver/internal/registry"
)

// TracerName is the instrumentation name of license spans.
const TracerName = "autonaver/license"

// Resolver yields the local machine identifier.
type Resolver interface {
	Resolve(ctx context.Context) identity.Resolution
}

// RecordStore loads and saves the license record.
type RecordStore interface {
	Load(ctx context.Context) (persistence.LicenseRecord, bool)
	Save(ctx context.Context, rec persistence.LicenseRecord) error
}

// Diagnostics supplies the informational fields of a license record.
type Diagnostics interface {
	MACAddress() string
	LocalIP(ctx context.Context) string
	ProductID(ctx context.Context) string
}

// Verifier runs verifications. Calls must not overlap on the same machine.
type Verifier struct {
	resolver    Resolver
	source      registry.Source
	records     RecordStore
	diagnostics Diagnostics
	metrics     *Metrics
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithDiagnostics sets the diagnostics provider.
func WithDiagnostics(d Diagnostics) Option {
	return func(v *Verifier) {
		v.diagnostics = d
	}
}

// WithMetrics enables metric recording.
func WithMetrics(m *Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier returns a Verifier.
func NewVerifier(resolver Resolver, source registry.Source, records RecordStore, logger *slog.Logger, opts ...Option) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Verifier{
		resolver:    resolver,
		source:      source,
		records:     records,
		diagnostics: hardware.NewDiagnostics(nil),
		now:         time.Now,
		logger:      infrastructure.WithComponent(logger, "license_verifier"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify resolves the local identifier and checks it against one fresh
// registry snapshot.
func (v *Verifier) Verify(ctx context.Context) Result {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "license.verify")
	defer span.End()

	start := time.Now()
	resolution := v.resolver.Resolve(ctx)
	snapshot := v.fetch(ctx)

	result := v.evaluate(resolution.ID, snapshot)
	if result.Status == StatusActive {
		v.persistVerified(ctx, result.MachineID)
	}

	duration := time.Since(start)
	v.metrics.recordVerification(ctx, result.Status, duration)

	span.SetAttributes(
		attribute.String("license.status", string(result.Status)),
		attribute.String("identity.source", string(resolution.Source)),
		attribute.Float64("license.duration_ms", float64(duration.Milliseconds())),
	)
	if err := result.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "license active")
	}

	v.logVerification(ctx, result, resolution.Source, duration)
	return result
}

// fetch reads one registry snapshot and records the fetch metrics.
func (v *Verifier) fetch(ctx context.Context) registry.Snapshot {
	start := time.Now()
	snapshot := v.source.Fetch(ctx)
	v.metrics.recordFetch(ctx, !snapshot.Empty(), time.Since(start))
	return snapshot
}

// evaluate maps an identifier and a snapshot onto a status.
func (v *Verifier) evaluate(local machineid.ID, snapshot registry.Snapshot) Result {
	if snapshot.Empty() {
		return Result{
			Status:    StatusUnreachable,
			Message:   msgUnreachable,
			MachineID: local,
			err:       fmt.Errorf("%w: empty snapshot", apperrors.ErrRegistryUnreachable),
		}
	}

	id, ok := machineid.Normalize(local.String())
	if !ok {
		return Result{
			Status:    StatusUnregistered,
			Message:   msgMalformed,
			MachineID: local,
			err:       fmt.Errorf("%w: %w %q", apperrors.ErrLicenseNotFound, apperrors.ErrMalformedIdentifier, local),
		}
	}

	buyer, ok := snapshot.Lookup(id)
	if !ok {
		return Result{
			Status:    StatusUnregistered,
			Message:   unregisteredMessage(id),
			MachineID: id,
			err:       fmt.Errorf("%w: %s", apperrors.ErrLicenseNotFound, id),
		}
	}

	if expired(buyer.ExpiryDate, v.now()) {
		return Result{
			Status:    StatusExpired,
			Message:   expiredMessage(buyer),
			MachineID: id,
			Buyer:     &buyer,
			err:       fmt.Errorf("%w: %s", apperrors.ErrLicenseExpired, buyer.ExpiryDate),
		}
	}

	return Result{
		Status:    StatusActive,
		Message:   activeMessage(buyer, id),
		MachineID: id,
		Buyer:     &buyer,
	}
}

// expired reports whether date is strictly before the calendar day of now.
// Empty or unparseable dates never expire.
func expired(date string, now time.Time) bool {
	date = strings.TrimSpace(date)
	if date == "" {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, layout := range expiryLayouts {
		if expiry, err := time.ParseInLocation(layout, date, now.Location()); err == nil {
			return expiry.Before(today)
		}
	}
	return false
}

// persistVerified writes the verified record when none exists or its
// identifier differs from id. Failures are logged only.
func (v *Verifier) persistVerified(ctx context.Context, id machineid.ID) {
	if rec, ok := v.records.Load(ctx); ok {
		if stored, valid := rec.MachineID(); valid && stored == id {
			return
		}
	}

	rec := v.newRecord(ctx, persistence.VerifiedMarker, id)
	err := v.records.Save(ctx, rec)
	v.metrics.recordWrite(ctx, "verified", err == nil)
	if err != nil {
		v.logAction(ctx, slog.LevelWarn, "record_verified", "failure",
			slog.String("machine_id", id.Short(shortIDLength)),
			slog.String("error", err.Error()))
		return
	}
	v.logAction(ctx, slog.LevelInfo, "record_verified", "success",
		slog.String("machine_id", id.Short(shortIDLength)))
}

// newRecord fills a license record for id with the current diagnostics.
func (v *Verifier) newRecord(ctx context.Context, key string, id machineid.ID) persistence.LicenseRecord {
	return persistence.LicenseRecord{
		LicenseKey:          key,
		RegisteredMachineID: id.String(),
		MACAddress:          v.diagnostics.MACAddress(),
		WindowsID:           v.diagnostics.ProductID(ctx),
		LocalIP:             v.diagnostics.LocalIP(ctx),
		RegisteredDate:      v.now().Format(persistence.RecordTimeLayout),
		Status:              persistence.StatusActive,
	}
}
