package catalog

// Kind is the JSON type of the catalog's top-level value.
type Kind string

const (
	// KindArray is a top-level JSON array, the usual scraper output.
	KindArray Kind = "array"
	// KindObject is a top-level JSON object keyed by model name.
	KindObject Kind = "object"
	// KindScalar is any other well-formed top-level value.
	KindScalar Kind = "scalar"
)

// Summary describes a catalog file that passed structural validation.
type Summary struct {
	// Kind is the top-level JSON type.
	Kind Kind
	// Entries is the number of array elements or object keys.
	Entries int
}

// HasCount reports whether Entries is meaningful for this Kind.
func (s Summary) HasCount() bool {
	return s.Kind == KindArray || s.Kind == KindObject
}
