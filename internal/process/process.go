package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound indicates that a program is not resolvable on PATH.
var ErrNotFound = errors.New("program not found on PATH")

// Command describes a single program invocation.
type Command struct {
	// Name is a human label used in errors and logs, e.g. "scraper".
	Name string
	// Path is the program to execute, resolved through PATH if it has no separator.
	Path string
	// Args are passed to the program as-is.
	Args []string
	// Dir is the working directory of the program.
	Dir string
	// Stdout receives the program output; os.Stdout when nil.
	Stdout io.Writer
	// Stderr receives the program diagnostics; os.Stderr when nil.
	Stderr io.Writer
}

// String renders the command line for logs and manual instructions.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is the outcome of a program that ran to completion.
type Result struct {
	// ExitCode is the process exit status; -1 when killed by a signal.
	ExitCode int
}

// OK reports whether the program exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Err returns an *ExitError for a non-zero exit code and nil otherwise.
func (r Result) Err(name string) error {
	if r.OK() {
		return nil
	}

	return &ExitError{Name: name, ExitCode: r.ExitCode}
}

// ExitError describes a program that finished with a non-zero exit code.
type ExitError struct {
	// Name is the Command label.
	Name string
	// ExitCode is the reported exit status.
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
}

// Runner executes commands and waits for them to finish.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands as child processes of the current one.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the program and blocks until it exits. Canceling ctx kills it.
func (*ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	//nolint:gosec // Programs come from the operator's own settings.
	child := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	child.Dir = cmd.Dir
	child.Stdin = nil
	child.Stdout = writerOr(cmd.Stdout, os.Stdout)
	child.Stderr = writerOr(cmd.Stderr, os.Stderr)

	err := child.Run()
	if err == nil {
		return Result{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode()}, nil
	}

	return Result{ExitCode: -1}, fmt.Errorf("run %s: %w", cmd.Name, err)
}

// LookPath resolves a program name on PATH.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return path, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}

	return w
}
