// Package app wires configuration, logging, telemetry, persistence, the
// hardware probes and the registry into a license verifier for the command
// line tools.
//
// # Initialization Flow
//
//	1. Resolve the state, legacy and log directories
//	2. Initialize the slog logger and OpenTelemetry
//	3. Build the identifier store and the license record store
//	4. Pick the registry source (CSV export, or Sheets API with an API key)
//	5. Build the resolver and the verifier
//
// # Usage
//
//	application, err := app.NewApplication(ctx, cfg, app.Options{})
//	if err != nil {
//	    return err
//	}
//	defer application.Close(ctx)
//	result := application.Verifier.Verify(ctx)
package app
