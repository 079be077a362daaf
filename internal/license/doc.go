// Package license verifies the machine identifier against the buyer
// registry.
//
// A verification resolves the local identifier, fetches one registry
// snapshot and maps the pair onto one of four statuses:
//
//	UNREACHABLE   the registry returned nothing; nothing is persisted
//	UNREGISTERED  the identifier is not in the registry (or is malformed)
//	EXPIRED       the buyer's expiry date is before today
//	ACTIVE        the buyer is registered and not expired
//
// ACTIVE is the only automatic path that writes the license record. It does
// so when no record exists or when the stored identifier differs, marking
// the record as confirmed by the registry. Operators can write a record
// directly with Register.
//
// Expiry dates use the YYYY-MM-DD layout in local time. An empty or
// unparseable date never expires.
//
// Usage:
//
//	verifier := license.NewVerifier(resolver, registry.NewClient(cfg.Registry, logger), records, logger,
//		license.WithDiagnostics(hardware.NewDiagnostics(prober)))
//	result := verifier.Verify(ctx)
//	if !result.Authorized() {
//		fmt.Println(result.Message)
//	}
package license
