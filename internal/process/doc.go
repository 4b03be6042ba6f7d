// Package process runs external programs for the updater.
//
// A finished program is reported as a Result carrying its exit code; a
// non-zero code is not a Go error until the caller asks for one. Errors from
// Run are reserved for programs that could not be started at all.
package process
