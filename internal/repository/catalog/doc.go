// Package catalog reads the catalog data file written by the scraper.
//
// Validation is structural only: the file must be well-formed JSON. The
// record schema is decoded separately, for callers that need model names.
package catalog
