// Package logging provides a simple leveled logging interface for the
// video thumbnail service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information, including every frame
//     extraction attempt
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. Messages are written to stderr through a
// zerolog console writer.
package logging
