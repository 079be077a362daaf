// Package identity resolves the machine identifier: it adopts a registered
// identifier, recalls a persisted one, or generates a new one from hardware
// signals, in that order.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"autonaver/internal/hardware"
	"autonaver/internal/infrastructure"
	"autonaver/internal/machineid"
)

const (
	tracerName = "autonaver/identity"
	separator  = "|"
)

// Source tells how an identifier was obtained.
type Source string

const (
	SourceMigration Source = "migration"
	SourceRecall    Source = "recall"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Store is the replicated identifier storage.
type Store interface {
	ReadFirst(ctx context.Context) (machineid.ID, bool)
	WriteAll(ctx context.Context, id machineid.ID) int
	Repair(ctx context.Context, id machineid.ID) int
}

// RegisteredSource exposes the identifier of an existing license record.
type RegisteredSource interface {
	RegisteredMachineID(ctx context.Context) (machineid.ID, bool)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	ID     machineid.ID
	Source Source
}

// Resolver combines the license record, the store and the hardware probes.
// It is not safe for concurrent use on the same store.
type Resolver struct {
	registered RegisteredSource
	store      Store
	prober     hardware.Prober
	logger     *slog.Logger
}

// NewResolver returns a Resolver. registered may be nil.
func NewResolver(registered RegisteredSource, store Store, prober hardware.Prober, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		registered: registered,
		store:      store,
		prober:     prober,
		logger:     infrastructure.WithComponent(logger, "identity_resolver"),
	}
}

// Resolve returns the machine identifier. It always succeeds: when no
// hardware signal is available it hashes the host composite instead.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "identity.resolve")
	defer span.End()

	res := r.resolve(ctx)

	span.SetAttributes(
		attribute.String("identity.source", string(res.Source)),
		attribute.String("identity.prefix", res.ID.Short(14)),
	)
	r.logger.InfoContext(ctx, "Machine identifier resolved",
		slog.String("action", "resolve"),
		slog.String("result", "success"),
		slog.String("source", string(res.Source)),
		slog.String("machine_id_prefix", res.ID.Short(14)))
	return res
}

func (r *Resolver) resolve(ctx context.Context) Resolution {
	if r.registered != nil {
		if id, ok := r.registered.RegisteredMachineID(ctx); ok {
			r.store.Repair(ctx, id)
			return Resolution{ID: id, Source: SourceMigration}
		}
	}

	if id, ok := r.store.ReadFirst(ctx); ok {
		return Resolution{ID: id, Source: SourceRecall}
	}

	signals := r.prober.Probe(ctx)
	id, source := Derive(signals)
	trace.SpanFromContext(ctx).AddEvent("identity.generated", trace.WithAttributes(
		attribute.StringSlice("identity.signals", signals.Available()),
	))
	r.logger.InfoContext(ctx, "Generated new machine identifier",
		slog.String("action", "generate"),
		slog.String("source", string(source)),
		slog.Any("signals", signals.Available()))

	r.store.WriteAll(ctx, id)
	return Resolution{ID: id, Source: source}
}

// Derive computes the identifier for a probe result: the first 32 hex chars
// of the SHA-256 of the present signals joined with "|", or of the host
// composite when none is present.
func Derive(signals hardware.Signals) (machineid.ID, Source) {
	parts := signals.HashParts()
	source := SourceGenerated
	if len(parts) == 0 {
		parts = signals.FallbackParts()
		source = SourceFallback
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, separator)))
	id, _ := machineid.FromDigest(hex.EncodeToString(sum[:]))
	return id, source
}
