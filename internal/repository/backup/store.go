package backup

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/model-updater/internal/logger"

	// Ensure SHA512 is linked for checksum calculation.
	_ "crypto/sha512"
)

const (
	// TimestampLayout is the second-granularity suffix of backup files.
	TimestampLayout = "20060102_150405"

	// DefaultFileMode is applied to a restored file whose mode is unknown.
	DefaultFileMode os.FileMode = 0o644

	// checksumFunction fingerprints the backed up bytes.
	checksumFunction = crypto.SHA512

	// suffix separates the source path from the timestamp.
	suffix = ".backup."
)

var (
	// ErrNoHandle is returned when Restore is called without a backup.
	ErrNoHandle = errors.New("no backup to restore")
	// ErrNotRegular is returned when the source exists but is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
	// errHashUnavailable is returned when SHA-512 is not linked into the binary.
	errHashUnavailable = errors.New("hash function unavailable")
)

// Handle identifies a backup made during the current run.
type Handle struct {
	// Source is the file that was backed up.
	Source string
	// Path is the backup copy.
	Path string
	// Checksum is the SHA-512 of the copied bytes.
	Checksum []byte
	// Mode is the permission of Source at backup time.
	Mode os.FileMode
	// CreatedAt is the timestamp embedded in Path.
	CreatedAt time.Time
}

// Store creates and restores backups.
type Store struct {
	// now supplies the backup timestamp.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store using the local wall clock.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the backup location of source taken at t.
func Path(source string, t time.Time) string {
	return source + suffix + t.Format(TimestampLayout)
}

// Create copies source byte-for-byte next to itself.
// It returns a nil Handle and no error when source does not exist.
func (s *Store) Create(ctx context.Context, source string) (*Handle, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.DebugKV(ctx, "Nothing to back up", "source", source)
			return nil, nil
		}

		return nil, fmt.Errorf("stat %s: %w", source, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", source, ErrNotRegular)
	}

	createdAt := s.now()
	handle := &Handle{
		Source:    source,
		Path:      Path(source, createdAt),
		Mode:      info.Mode().Perm(),
		CreatedAt: createdAt,
	}

	handle.Checksum, err = copyFile(source, handle.Path, handle.Mode)
	if err != nil {
		return nil, fmt.Errorf("back up %s: %w", source, err)
	}

	logger.InfoKV(ctx, "Backup created", "source", source, "backup", handle.Path)

	return handle, nil
}

// Restore puts the backup back in place of its source and removes the backup.
// The replacement is atomic and checked against the checksum taken by Create.
func (s *Store) Restore(ctx context.Context, handle *Handle) error {
	if handle == nil {
		return ErrNoHandle
	}

	data, err := os.ReadFile(filepath.Clean(handle.Path))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	// go-update renames the current target aside, so it has to exist.
	if _, err = os.Stat(handle.Source); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(handle.Source, nil, DefaultFileMode); err != nil { //nolint:gosec // Catalog is world-readable.
			return fmt.Errorf("recreate %s: %w", handle.Source, err)
		}
	}

	mode := handle.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}

	options := goupdate.Options{
		TargetPath: handle.Source,
		TargetMode: mode,
		Checksum:   handle.Checksum,
		Hash:       checksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("restore %s: %w", handle.Source, err)
	}

	removeLeftover(oldPath(handle.Source))

	if err = os.Remove(handle.Path); err != nil {
		return fmt.Errorf("remove backup: %w", err)
	}

	logger.InfoKV(ctx, "Backup restored", "source", handle.Source, "backup", handle.Path)

	return nil
}

// Checksum returns the SHA-512 of the provided bytes.
func Checksum(data []byte) ([]byte, error) {
	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := checksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// copyFile copies src to dst, syncs it, and returns the checksum of the copied bytes.
// A failed copy leaves no dst behind.
func copyFile(src, dst string, perm os.FileMode) (checksum []byte, err error) {
	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	hasher := checksumFunction.New()

	if _, err = io.Copy(io.MultiWriter(out, hasher), in); err != nil {
		return nil, err
	}

	if err = out.Sync(); err != nil {
		return nil, err
	}

	if err = out.Close(); err != nil {
		return nil, err
	}

	return hasher.Sum(nil), nil
}

// oldPath is where go-update parks the replaced target.
func oldPath(target string) string {
	return filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".old")
}

// removeLeftover deletes a file if it exists.
func removeLeftover(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}
