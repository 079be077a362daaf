// Command licensecheck verifies this machine against the buyer registry.
//
// The exit status is 0 only when the license is active and 3 when the registry
// could not be reached, so a wrapper can retry later. With -watch it keeps
// verifying on the given interval until interrupted and exits with the status
// of the last verification.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"autonaver/internal/app"
	"autonaver/internal/config"
	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
	"autonaver/internal/license"
)

const (
	exitActive      = 0
	exitDenied      = 1
	exitUsage       = 2
	exitUnreachable = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("licensecheck", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config file (default $"+config.ConfigEnvVar+")")
	watch := flags.Duration("watch", 0, "re-verify on this interval until interrupted")
	metricsAddr := flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	showInfo := flags.Bool("info", false, "print registration details instead of verifying")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "설정을 불러올 수 없습니다: %v\n", err)
		return exitDenied
	}
	if *metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = *metricsAddr
	}
	if cfg.Telemetry.MetricsAddr != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.MetricExporter = "prometheus"
	}

	ctx, stop := app.SignalContext(context.Background())
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	application, err := app.NewApplication(ctx, cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(stderr, "초기화에 실패했습니다: %v\n", err)
		return exitDenied
	}
	defer application.Close(context.Background())

	if *showInfo {
		printInfo(stdout, application.Verifier.Info(ctx))
		return exitActive
	}

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		go func() {
			if err := application.ServeMetrics(ctx, addr); err != nil {
				application.Logger.ErrorContext(ctx, "Metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	if *watch > 0 {
		var last license.Result
		err := application.Watch(ctx, *watch, func(result license.Result) {
			last = result
			printResult(stdout, result)
		})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		return exitCode(last)
	}

	result := application.Verifier.Verify(ctx)
	printResult(stdout, result)
	return exitCode(result)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func exitCode(result license.Result) int {
	if result.Authorized() {
		return exitActive
	}
	if apperrors.IsRetryable(result.Err()) {
		return exitUnreachable
	}
	return exitDenied
}

func printResult(w io.Writer, result license.Result) {
	fmt.Fprintf(w, "[%s]\n%s\n", result.Status, result.Message)
}

func printInfo(w io.Writer, info license.Info) {
	fmt.Fprintf(w, "상태: %s\n", info.Status)
	fmt.Fprintf(w, "구매자: %s\n", info.Name)
	fmt.Fprintf(w, "이메일: %s\n", info.Email)
	fmt.Fprintf(w, "머신 ID: %s\n", info.MachineID)
	fmt.Fprintf(w, "MAC 주소: %s\n", info.MACAddress)
	fmt.Fprintf(w, "IP 주소: %s\n", info.LocalIP)
	fmt.Fprintf(w, "만료일: %s\n", info.ExpiryDate)
	if !info.Reachable {
		fmt.Fprintln(w, "(구매자 정보를 불러올 수 없습니다)")
	}
}
