// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - key-value helpers (InfoKV, ErrorKV, etc.).
//
// Stdout belongs to the human status lines printed by the console package,
// so log records never interleave with them.
package logger
