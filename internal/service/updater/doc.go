// Package updater refreshes the model catalog of a project.
//
// It backs up the catalog, runs the external scraper, validates the rewritten
// JSON, restores the backup when validation fails, reports the entry count and
// finally runs the release build when the build tool is installed. Every step
// runs once; the first fatal error aborts the run.
package updater
