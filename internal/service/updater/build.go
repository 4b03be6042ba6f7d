package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/model-updater/internal/config"
	"github.com/oshokin/model-updater/internal/logger"
	"github.com/oshokin/model-updater/internal/process"
)

// BuildResult is the outcome of the build step.
type BuildResult struct {
	// Skipped is true when the build tool is not installed.
	Skipped bool
	// Artifact is the absolute path the release binary is expected at.
	Artifact string
	// ArtifactFound is true when Artifact exists after a successful build.
	ArtifactFound bool
	// ArtifactSize is the size of Artifact in bytes.
	ArtifactSize int64
}

// build runs the release build when the build tool is available.
// A missing tool degrades to a warning; a failing build is fatal.
func (u *runner) build(ctx context.Context) (*BuildResult, error) {
	ctx = logger.WithName(ctx, "build")
	result := &BuildResult{
		Artifact: config.Resolve(u.root, u.cfg.Build.Artifact),
	}

	tool, err := u.lookPath(u.cfg.Build.Tool)
	if err != nil {
		result.Skipped = true

		logger.WarnKV(ctx, "Build tool not found, skipping build", "tool", u.cfg.Build.Tool)
		u.out.Warning("%s not found on PATH, skipping the release build", u.cfg.Build.Tool)
		u.out.Hint("Build it manually: %s", u.cfg.Build.CommandLine())

		return result, nil
	}

	u.warnIfRunning(ctx, result.Artifact)

	cmd := process.Command{
		Name:   "build",
		Path:   tool,
		Args:   u.cfg.Build.Args,
		Dir:    u.root,
		Stdout: u.stdout,
	}

	u.out.Step("Building release binary: %s", u.cfg.Build.CommandLine())
	logger.InfoKV(ctx, "Starting build", "command", cmd.String(), "dir", cmd.Dir)

	exit, err := u.exec.Run(ctx, cmd)
	if err != nil {
		u.out.Failure("Build could not be started")
		return result, fmt.Errorf("%w: %w", ErrSubprocessFailed, err)
	}

	if err = exit.Err(cmd.Name); err != nil {
		u.out.Failure("Build failed with exit code %d", exit.ExitCode)
		return result, fmt.Errorf("%w: %w", ErrSubprocessFailed, err)
	}

	u.out.Success("Release build finished")

	info, err := os.Stat(result.Artifact)
	if err != nil || !info.Mode().IsRegular() {
		logger.DebugKV(ctx, "Release artifact not found, skipping size report", "artifact", result.Artifact)
		return result, nil
	}

	result.ArtifactFound = true
	result.ArtifactSize = info.Size()

	u.out.Success("Binary %s (%s)", u.relative(result.Artifact), humanize.Bytes(uint64(info.Size()))) //nolint:gosec // Sizes are never negative.

	return result, nil
}

// warnIfRunning tells the operator that a running copy of the artifact may block the build.
func (u *runner) warnIfRunning(ctx context.Context, artifact string) {
	name := filepath.Base(artifact)

	pids, err := u.findRunning(name)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(pids) == 0 {
		return
	}

	logger.WarnKV(ctx, "Release binary is running", "name", name, "pids", pids)
	u.out.Warning("%s is running (pid %v), the build may fail to replace it", name, pids)
}
