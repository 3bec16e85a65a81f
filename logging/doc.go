// Package logging provides a minimal logging interface and adapters for
// varmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the training driver uses for diagnostics. This package
// includes:
//
//   - Logger interface for dependency injection
//   - SlogLogger adapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal so users can plug any
// structured logger while training diagnostics stay observable by default.
package logging
