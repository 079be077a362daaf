package persistence

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
	"autonaver/internal/machineid"
)

// Store replicates the machine identifier across its locations.
type Store struct {
	locations []Location
	logger    *slog.Logger
}

// NewStore builds a store reading native first (when not nil) and then the
// given files in order. Files resolving to the same path are kept once.
func NewStore(native Location, files []string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	locations := make([]Location, 0, len(files)+1)
	if native != nil {
		locations = append(locations, native)
	}
	for _, p := range DedupePaths(files) {
		locations = append(locations, FileLocation{Path: p})
	}

	return &Store{
		locations: locations,
		logger:    infrastructure.WithComponent(logger, "identity_store"),
	}
}

// Locations returns the replica slots in read priority order.
func (s *Store) Locations() []Location {
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// ReadFirst returns the first stored value that normalizes. Unreadable and
// malformed entries are skipped.
func (s *Store) ReadFirst(ctx context.Context) (machineid.ID, bool) {
	for _, loc := range s.locations {
		id, err := readID(loc)
		if err != nil {
			s.logger.DebugContext(ctx, "Skipping identifier location",
				slog.String("action", "read"),
				slog.String("location", loc.Name()),
				slog.String("error", err.Error()))
			continue
		}
		s.logger.DebugContext(ctx, "Identifier recalled",
			slog.String("action", "read"),
			slog.String("result", "success"),
			slog.String("location", loc.Name()))
		return id, true
	}
	return "", false
}

// WriteAll writes id to every location and returns how many succeeded.
// Failures are logged and never returned.
func (s *Store) WriteAll(ctx context.Context, id machineid.ID) int {
	written := 0
	for _, loc := range s.locations {
		if s.write(ctx, loc, id) {
			written++
		}
	}
	s.logWriteSummary(ctx, "write_all", written)
	return written
}

// Repair writes id only to the locations whose stored value is missing,
// malformed, or different, and returns how many were rewritten.
func (s *Store) Repair(ctx context.Context, id machineid.ID) int {
	repaired := 0
	for _, loc := range s.locations {
		if current, err := readID(loc); err == nil && current == id {
			continue
		}
		if s.write(ctx, loc, id) {
			repaired++
		}
	}
	if repaired > 0 {
		s.logWriteSummary(ctx, "repair", repaired)
	}
	return repaired
}

func (s *Store) write(ctx context.Context, loc Location, id machineid.ID) bool {
	if err := loc.Write(id.String()); err != nil {
		err = fmt.Errorf("%s: %w: %v", loc.Name(), apperrors.ErrPersistenceWriteFailed, err)
		s.logger.WarnContext(ctx, "Identifier write failed",
			slog.String("action", "write"),
			slog.String("result", "failure"),
			slog.String("location", loc.Name()),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *Store) logWriteSummary(ctx context.Context, action string, written int) {
	level := slog.LevelDebug
	if written == 0 && len(s.locations) > 0 {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "Identifier persisted",
		slog.String("action", action),
		slog.Int("written", written),
		slog.Int("locations", len(s.locations)))
}

func readID(loc Location) (machineid.ID, error) {
	raw, err := loc.Read()
	if err != nil {
		return "", err
	}
	id, ok := machineid.Normalize(raw)
	if !ok {
		return "", apperrors.ErrMalformedIdentifier
	}
	return id, nil
}
