package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"autonaver/internal/config"
	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
)

// SheetsSource reads the registry through the Sheets values API.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewSheetsSource builds a source authenticated with cfg.APIKey. Extra client
// options are appended after the key.
func NewSheetsSource(ctx context.Context, cfg config.RegistryConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsSource{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		limiter:       newLimiter(cfg),
		logger:        infrastructure.WithComponent(logger, "registry_sheets"),
	}, nil
}

// Fetch reads the sheet values. Any failure yields an empty snapshot.
func (s *SheetsSource) Fetch(ctx context.Context) Snapshot {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registry.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("registry.source", "sheets"))

	start := time.Now()
	snapshot, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "Registry fetch failed",
			slog.String("action", "fetch"),
			slog.String("result", "unreachable"),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return Snapshot{}
	}

	span.SetAttributes(attribute.Int("registry.rows", len(snapshot)))
	s.logger.InfoContext(ctx, "Registry fetched",
		slog.String("action", "fetch"),
		slog.String("result", "success"),
		slog.Int("rows", len(snapshot)),
		slog.Duration("duration", time.Since(start)))
	return snapshot
}

func (s *SheetsSource) fetch(ctx context.Context) (Snapshot, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistryUnreachable, err)
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet: %v", apperrors.ErrRegistryUnreachable, err)
	}

	snapshot := Snapshot{}
	for i, row := range resp.Values {
		if i == 0 {
			continue
		}
		addRow(snapshot, cellStrings(row))
	}
	return snapshot, nil
}

// cellStrings converts sheet cells to strings. Cells that cannot be
// converted become empty.
func cellStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		str, err := cast.ToStringE(cell)
		if err != nil {
			continue
		}
		out[i] = str
	}
	return out
}
