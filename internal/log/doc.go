// Package log provides sanitizing structured logging built on log/slog.
//
// The SecureHandler wraps any slog.Handler and rewrites attributes before they
// reach the output:
//   - Credentials (cookies, authorization headers, tokens, passwords) are
//     replaced with MaskValue.
//   - Contact data collected by the crawler (email addresses and phone numbers)
//     is partially masked, so debug logs can still be correlated with a report
//     without exposing the full value.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("email found", "email", "jane.doe@acme.test") // email=j***@acme.test
//	slog.SetDefault(logger)
package log
