// Package verifier checks that every model in the catalog still exists on
// the Hugging Face Hub.
//
// Requests are sequential with a fixed pause between them, so a large catalog
// stays below the Hub rate limits.
package verifier
