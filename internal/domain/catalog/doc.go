// Package catalog contains the domain types of the model catalog.
//
// It defines Model (one scraped record) and Summary (the structural shape of a
// catalog file), independent of how the file is stored or parsed.
package catalog
