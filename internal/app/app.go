package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"autonaver/internal/config"
	"autonaver/internal/hardware"
	"autonaver/internal/identity"
	"autonaver/internal/infrastructure"
	"autonaver/internal/license"
	"autonaver/internal/persistence"
	"autonaver/internal/registry"
)

const shutdownTimeout = 5 * time.Second

// Application wires the license components for one process.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Store         *persistence.Store
	Records       *persistence.RecordStore
	Prober        hardware.Prober
	Registry      registry.Source
	Resolver      *identity.Resolver
	Verifier      *license.Verifier

	ownsLogFile bool
}

// Options replaces host-bound pieces of the wiring.
type Options struct {
	// Logger skips file logger initialization when set.
	Logger      *slog.Logger
	Prober      hardware.Prober
	Diagnostics license.Diagnostics
	// NoNative disables the OS-native identifier store.
	NoNative bool
}

// NewApplication resolves paths, initializes logging and telemetry and builds
// the verifier.
func NewApplication(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.LogFile()
	}

	a := &Application{Config: cfg, Paths: paths, Logger: opts.Logger}
	if a.Logger == nil {
		a.Logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.ownsLogFile = true
	}

	a.Logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(a.Logger)

	a.OTelProviders, err = infrastructure.InitializeOTel(cfg.Telemetry, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := license.InitializeMetrics(a.OTelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize license metrics: %w", err)
	}

	a.Prober = opts.Prober
	if a.Prober == nil {
		a.Prober = hardware.NewSystem(a.Logger)
	}

	var native persistence.Location
	if !opts.NoNative {
		native = persistence.NativeLocation(config.AppName)
	}
	a.Store = persistence.NewStore(native, persistence.MachineIDFiles(paths.IdentityDirs()...), a.Logger)
	a.Records = persistence.NewRecordStore(paths.LicenseFile(), []string{paths.LegacyLicenseFile()}, a.Logger)

	a.Registry, err = newRegistrySource(ctx, cfg.Registry, a.Logger)
	if err != nil {
		return nil, err
	}

	diagnostics := opts.Diagnostics
	if diagnostics == nil {
		diagnostics = hardware.NewDiagnostics(a.Prober)
	}

	a.Resolver = identity.NewResolver(a.Records, a.Store, a.Prober, a.Logger)
	a.Verifier = license.NewVerifier(a.Resolver, a.Registry, a.Records, a.Logger,
		license.WithDiagnostics(diagnostics),
		license.WithMetrics(metrics))
	return a, nil
}

// newRegistrySource picks the Sheets API when an API key is configured and
// the CSV export otherwise.
func newRegistrySource(ctx context.Context, cfg config.RegistryConfig, logger *slog.Logger) (registry.Source, error) {
	if cfg.UseSheetsAPI() {
		source, err := registry.NewSheetsSource(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create registry source: %w", err)
		}
		return source, nil
	}
	return registry.NewClient(cfg, logger), nil
}

// Watch verifies immediately and then every interval until ctx is done.
// Verifications never overlap.
func (a *Application) Watch(ctx context.Context, interval time.Duration, report func(license.Result)) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report(a.Verifier.Verify(infrastructure.EnsureTraceID(ctx)))
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// MetricsHandler serves the Prometheus scrape endpoint, or nil when metric
// export is disabled.
func (a *Application) MetricsHandler() http.Handler {
	if a.OTelProviders == nil {
		return nil
	}
	return a.OTelProviders.PrometheusHTTP
}

// Router returns the HTTP routes served by ServeMetrics, or nil when metric
// export is disabled.
func (a *Application) Router() http.Handler {
	handler := a.MetricsHandler()
	if handler == nil {
		return nil
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", otelhttp.NewHandler(handler, "metrics"))
	return r
}

// ServeMetrics serves /metrics on addr until ctx is done.
func (a *Application) ServeMetrics(ctx context.Context, addr string) error {
	router := a.Router()
	if router == nil {
		return errors.New("metrics export is disabled")
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(shutdownCtx, "Metrics server shutdown error", slog.String("error", err.Error()))
		}
	}()

	a.Logger.InfoContext(ctx, "Serving metrics", slog.String("address", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Close flushes telemetry and closes the log file.
func (a *Application) Close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if a.OTelProviders != nil {
		if shutdownErr := a.OTelProviders.Shutdown(shutdownCtx); shutdownErr != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", shutdownErr.Error()))
			err = shutdownErr
		}
	}
	if a.ownsLogFile {
		if closeErr := infrastructure.CloseLogFile(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
