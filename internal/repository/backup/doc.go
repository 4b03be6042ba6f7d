// Package backup snapshots the catalog before the scraper rewrites it and
// puts the snapshot back when the rewrite turns out to be broken.
//
// A snapshot lives next to its source as <source>.backup.<YYYYMMDD_HHMMSS>.
// Restoring verifies the SHA-512 checksum recorded at creation time and
// consumes the snapshot; snapshots that are never restored stay on disk.
package backup
