package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domain "github.com/oshokin/model-updater/internal/domain/catalog"
)

var (
	// ErrNotFound is returned when the data file does not exist.
	ErrNotFound = errors.New("catalog file not found")
	// ErrMalformed is returned when the data file is not well-formed JSON.
	ErrMalformed = errors.New("catalog file is not well-formed JSON")
	// ErrNotArray is returned by Models for catalogs that are not a JSON array.
	ErrNotArray = errors.New("catalog is not a JSON array")
)

// FileRepository reads a catalog JSON file from disk.
type FileRepository struct {
	// path is the filesystem location of the catalog.
	path string
}

// NewFileRepository creates a repository for the catalog at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the catalog location.
func (r *FileRepository) Path() string {
	return r.path
}

// Validate checks that the catalog is well-formed JSON and describes its top-level value.
//
// Only syntax is checked. Duplicate object keys, numbers beyond float64 range
// and unpaired surrogate escapes are valid JSON and are accepted.
func (r *FileRepository) Validate(_ context.Context) (*domain.Summary, error) {
	contents, err := r.read()
	if err != nil {
		return nil, err
	}

	// RawMessage keeps the bytes as they are, so only the syntax scanner runs.
	var document json.RawMessage
	if err = json.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.path, ErrMalformed, err)
	}

	summary, err := summarize(document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.path, ErrMalformed, err)
	}

	return summary, nil
}

// Models decodes a top-level array of catalog records.
func (r *FileRepository) Models(_ context.Context) ([]domain.Model, error) {
	contents, err := r.read()
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(contents)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		return nil, fmt.Errorf("%s: %w", r.path, ErrNotArray)
	}

	var models []domain.Model
	if err = json.Unmarshal(trimmed, &models); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.path, ErrMalformed, err)
	}

	return models, nil
}

// read loads the whole file, mapping a missing file to ErrNotFound.
func (r *FileRepository) read() ([]byte, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, ErrNotFound)
		}

		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return contents, nil
}

// summarize walks the top level of a well-formed document and counts
// array elements or distinct object keys.
func summarize(document []byte) (*domain.Summary, error) {
	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch token {
	case json.Delim('['):
		entries := 0

		for decoder.More() {
			if err = skipValue(decoder); err != nil {
				return nil, err
			}

			entries++
		}

		return &domain.Summary{Kind: domain.KindArray, Entries: entries}, nil
	case json.Delim('{'):
		keys := make(map[string]struct{})

		for decoder.More() {
			key, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			if err = skipValue(decoder); err != nil {
				return nil, err
			}

			name, _ := key.(string)
			keys[name] = struct{}{}
		}

		return &domain.Summary{Kind: domain.KindObject, Entries: len(keys)}, nil
	default:
		return &domain.Summary{Kind: domain.KindScalar}, nil
	}
}

// skipValue consumes the next value without converting it.
func skipValue(decoder *json.Decoder) error {
	var value json.RawMessage

	return decoder.Decode(&value)
}
