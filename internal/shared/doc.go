// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage captures slog records in memory so tests can assert
// on log messages and attributes:
//
//	logger, logs := testutil.NewTestLogger(t)
//	v := license.NewVerifier(resolver, source, records, logger)
//	v.Verify(ctx)
//	testutil.AssertLogAttr(t, logs, "status", "ACTIVE")
package shared
