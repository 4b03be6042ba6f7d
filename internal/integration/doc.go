// Package integration holds end-to-end tests that run the updater against
// throwaway projects with shell scripts standing in for the scraper and the build.
package integration
