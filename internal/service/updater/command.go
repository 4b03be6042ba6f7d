package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/model-updater/internal/config"
	"github.com/oshokin/model-updater/internal/console"
	domain "github.com/oshokin/model-updater/internal/domain/catalog"
	"github.com/oshokin/model-updater/internal/logger"
	"github.com/oshokin/model-updater/internal/process"
	"github.com/oshokin/model-updater/internal/repository/backup"
	"github.com/oshokin/model-updater/internal/repository/catalog"
)

var (
	// ErrMissingDependency indicates that the scraper interpreter is not installed.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrSubprocessFailed indicates that the scraper or the build did not succeed.
	ErrSubprocessFailed = errors.New("subprocess failed")
	// ErrValidationFailed indicates that the scraper produced malformed JSON.
	ErrValidationFailed = errors.New("catalog validation failed")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ProjectRoot is the directory the scraper and the build run in.
	ProjectRoot string
	// ConfigPath is an optional settings file; model-updater.yaml in ProjectRoot otherwise.
	ConfigPath string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// Stdout receives status lines and subprocess output; os.Stdout when nil.
	Stdout io.Writer
}

// Report describes what a run did. Fields are filled in step order, so a
// failed run carries everything up to the failing step.
type Report struct {
	// DataFile is the absolute catalog path.
	DataFile string
	// Backup is the snapshot taken before scraping, nil on a first run.
	Backup *backup.Handle
	// Restored is true when Backup was put back after a validation failure.
	Restored bool
	// Catalog describes the validated catalog.
	Catalog *domain.Summary
	// Build is the outcome of the build step.
	Build *BuildResult
}

// runner holds the collaborators of a single update run.
// It is unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg         *config.Config               // Settings loaded from YAML or defaults.
	root        string                       // Absolute project root.
	exec        process.Runner               // Starts the scraper and the build.
	lookPath    func(string) (string, error) // Resolves tools on PATH.
	findRunning func(string) ([]int, error)  // Lists running copies of the artifact.
	backups     *backup.Store                // Creates and restores catalog snapshots.
	out         *console.Printer             // Human status lines.
	stdout      io.Writer                    // Subprocess output destination.
}

// Run executes the update pipeline and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "model-updater")

	u, err := newRunner(opts)
	if err != nil {
		return err
	}

	logger.ApplyLevel(ctx, u.cfg.LogLevel, opts.LogLevel)

	if _, err = u.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)
		u.out.Failure("Update aborted")

		return err
	}

	logger.Info(ctx, "Update completed")

	return nil
}

// newRunner resolves the project root, loads settings and wires the real collaborators.
func newRunner(opts *Options) (*runner, error) {
	root := opts.ProjectRoot
	if root == "" {
		root = "."
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	cfg, err := config.Load(root, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	return &runner{
		cfg:         cfg,
		root:        root,
		exec:        process.NewExecRunner(),
		lookPath:    process.LookPath,
		findRunning: process.FindRunning,
		backups:     backup.NewStore(),
		out:         console.New(stdout),
		stdout:      stdout,
	}, nil
}

// run walks the pipeline:
// 1) Check the scraper interpreter.
// 2) Back up the catalog if it exists.
// 3) Run the scraper.
// 4) Validate the catalog, restoring the backup on failure.
// 5) Report the entry count.
// 6) Build the release binary if the build tool exists.
// 7) Print the summary.
func (u *runner) run(ctx context.Context) (*Report, error) {
	report := &Report{
		DataFile: config.Resolve(u.root, u.cfg.DataFile),
	}

	u.out.Header("Updating model catalog")

	interpreter, err := u.checkInterpreter(ctx)
	if err != nil {
		return report, err
	}

	report.Backup, err = u.backupCatalog(ctx, report.DataFile)
	if err != nil {
		return report, err
	}

	if err = u.scrape(ctx, interpreter); err != nil {
		// The catalog is left as the scraper left it; only validation failures roll back.
		return report, err
	}

	report.Catalog, report.Restored, err = u.validate(ctx, report.DataFile, report.Backup)
	if err != nil {
		return report, err
	}

	u.reportCount(ctx, report.Catalog)

	report.Build, err = u.build(ctx)
	if err != nil {
		return report, err
	}

	u.printSummary(report)

	return report, nil
}

// checkInterpreter makes sure the scraper can be started before touching any file.
func (u *runner) checkInterpreter(ctx context.Context) (string, error) {
	name := u.cfg.Scraper.Interpreter

	path, err := u.lookPath(name)
	if err != nil {
		u.out.Failure("%s is required to run the scraper but was not found on PATH", name)
		return "", fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}

	logger.DebugKV(ctx, "Scraper interpreter resolved", "interpreter", name, "path", path)

	return path, nil
}

// backupCatalog snapshots the catalog. A failed copy is fatal.
func (u *runner) backupCatalog(ctx context.Context, dataFile string) (*backup.Handle, error) {
	handle, err := u.backups.Create(ctx, dataFile)
	if err != nil {
		u.out.Failure("Could not back up %s", u.cfg.DataFile)
		return nil, err
	}

	if handle == nil {
		u.out.Warning("%s does not exist yet, no backup made", u.cfg.DataFile)
		return nil, nil
	}

	u.out.Success("Backed up catalog to %s", u.relative(handle.Path))

	return handle, nil
}

// scrape runs the scraper from the project root and waits for it.
func (u *runner) scrape(ctx context.Context, interpreter string) error {
	cmd := process.Command{
		Name:   "scraper",
		Path:   interpreter,
		Args:   append([]string{u.cfg.Scraper.Script}, u.cfg.Scraper.Args...),
		Dir:    u.root,
		Stdout: u.stdout,
	}

	u.out.Step("Running scraper: %s %s", u.cfg.Scraper.Interpreter, u.cfg.Scraper.Script)
	logger.InfoKV(ctx, "Starting scraper", "command", cmd.String(), "dir", cmd.Dir)

	result, err := u.exec.Run(ctx, cmd)
	if err != nil {
		u.out.Failure("Scraper could not be started")
		return fmt.Errorf("%w: %w", ErrSubprocessFailed, err)
	}

	if err = result.Err(cmd.Name); err != nil {
		u.out.Failure("Scraper failed with exit code %d", result.ExitCode)
		return fmt.Errorf("%w: %w", ErrSubprocessFailed, err)
	}

	u.out.Success("Scraper finished")

	return nil
}

// validate checks the rewritten catalog and restores the backup when it is malformed.
func (u *runner) validate(
	ctx context.Context,
	dataFile string,
	handle *backup.Handle,
) (*domain.Summary, bool, error) {
	summary, err := catalog.NewFileRepository(dataFile).Validate(ctx)
	if err == nil {
		u.out.Success("%s is valid JSON", u.cfg.DataFile)
		return summary, false, nil
	}

	logger.ErrorKV(ctx, "Catalog validation failed", "data_file", dataFile, "error", err)
	u.out.Failure("%s is not valid JSON", u.cfg.DataFile)

	validationErr := fmt.Errorf("%w: %w", ErrValidationFailed, err)

	if handle == nil {
		u.out.Warning("No backup was made in this run, nothing to restore")
		return nil, false, validationErr
	}

	u.out.Step("Restoring %s from %s", u.cfg.DataFile, u.relative(handle.Path))

	if restoreErr := u.backups.Restore(ctx, handle); restoreErr != nil {
		u.out.Failure("Restore failed, the backup is still at %s", u.relative(handle.Path))
		return nil, false, errors.Join(validationErr, fmt.Errorf("restore backup: %w", restoreErr))
	}

	u.out.Success("Restored the previous catalog")

	return nil, true, validationErr
}

// reportCount prints the number of catalog entries. It never fails the run.
func (u *runner) reportCount(ctx context.Context, summary *domain.Summary) {
	if !summary.HasCount() {
		u.out.Warning("Catalog top-level value is a %s, no entry count available", summary.Kind)
		return
	}

	logger.InfoKV(ctx, "Catalog validated", "kind", summary.Kind, "entries", summary.Entries)
	u.out.Success("Catalog contains %d entries", summary.Entries)
}

// relative renders path relative to the project root when possible.
func (u *runner) relative(path string) string {
	rel, err := filepath.Rel(u.root, path)
	if err != nil {
		return path
	}

	return rel
}
