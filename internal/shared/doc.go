// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output in tests:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewHealthService(provider, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "dataset not loaded")
//
// Nothing here may import a domain package.
package shared
