// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides log capture and feed fixtures for
// tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewIngestionService(testutil.FeedSources("feeds/"), fetcher, st, logger)
//	...
//	testutil.AssertLogged(t, logs, slog.LevelWarn, "feed failed")
//
// Nothing in this tree may be imported from non-test code.
package shared
