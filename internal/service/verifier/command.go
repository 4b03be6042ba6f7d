package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/oshokin/model-updater/internal/config"
	"github.com/oshokin/model-updater/internal/console"
	domain "github.com/oshokin/model-updater/internal/domain/catalog"
	"github.com/oshokin/model-updater/internal/logger"
	"github.com/oshokin/model-updater/internal/repository/catalog"
)

// ErrModelsMissing is returned when at least one model could not be found.
var ErrModelsMissing = errors.New("some models are unavailable")

// statusUnreachable marks a request that produced no HTTP status.
const statusUnreachable = -1

// Options are inputs accepted by the verify entry point.
type Options struct {
	// ProjectRoot is where the catalog and the settings file live.
	ProjectRoot string
	// ConfigPath is an optional settings file.
	ConfigPath string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// Stdout receives the status lines; os.Stdout when nil.
	Stdout io.Writer
}

// Missing is a model the Hub did not confirm.
type Missing struct {
	// Name is the model repository id.
	Name string
	// Status is the HTTP status code, or -1 when the request failed.
	Status int
}

// Result summarizes a verification pass.
type Result struct {
	// Checked is the number of names requested.
	Checked int
	// Missing lists the names that were not found, in catalog order.
	Missing []Missing
}

// verifier issues availability requests.
type verifier struct {
	client    *http.Client
	endpoint  *url.URL
	userAgent string
	delay     time.Duration
	out       *console.Printer
}

// Run loads the catalog of a project and verifies every model name.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "model-verifier")
	out := console.New(opts.Stdout)

	root := opts.ProjectRoot
	if root == "" {
		root = "."
	}

	cfg, err := config.Load(root, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.ApplyLevel(ctx, cfg.LogLevel, opts.LogLevel)

	models, err := catalog.NewFileRepository(config.Resolve(root, cfg.DataFile)).Models(ctx)
	if err != nil {
		out.Failure("Could not read the model names from %s", cfg.DataFile)
		return err
	}

	v, err := newVerifier(&cfg.Verify, out)
	if err != nil {
		return err
	}

	defer v.client.CloseIdleConnections()

	names := domain.Names(models)

	out.Header(fmt.Sprintf("Hugging Face: checking %d models", len(names)))

	result, err := v.Verify(ctx, names)
	if err != nil {
		return err
	}

	return v.report(ctx, result)
}

// newVerifier builds a verifier from the verify settings.
func newVerifier(settings *config.Verify, out *console.Printer) (*verifier, error) {
	endpoint, err := url.Parse(settings.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse verify endpoint: %w", err)
	}

	return &verifier{
		client:    &http.Client{Timeout: settings.Timeout},
		endpoint:  endpoint,
		userAgent: settings.UserAgent,
		delay:     settings.Delay,
		out:       out,
	}, nil
}

// Verify checks names one by one, pausing between requests.
// It stops early only when ctx is canceled.
func (v *verifier) Verify(ctx context.Context, names []string) (*Result, error) {
	result := &Result{Checked: len(names)}

	for i, name := range names {
		if i > 0 {
			if err := v.wait(ctx); err != nil {
				return result, err
			}
		}

		status := v.check(ctx, name)
		if status == http.StatusOK {
			v.out.Success("[%d/%d] %s", i+1, len(names), name)
			continue
		}

		v.out.Failure("[%d/%d] %s (HTTP %d)", i+1, len(names), name, status)
		result.Missing = append(result.Missing, Missing{Name: name, Status: status})
	}

	return result, nil
}

// check requests a single model and returns the HTTP status or statusUnreachable.
func (v *verifier) check(ctx context.Context, name string) int {
	ctx = logger.WithKV(ctx, "model", name)

	target := *v.endpoint
	target.Path = path.Join(target.Path, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		logger.DebugKV(ctx, "Unable to build request", "error", err)
		return statusUnreachable
	}

	req.Header.Set("User-Agent", v.userAgent)

	response, err := v.client.Do(req)
	if err != nil {
		logger.DebugKV(ctx, "Request failed", "error", err)
		return statusUnreachable
	}

	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	return response.StatusCode
}

// wait pauses for the configured delay unless ctx is canceled first.
func (v *verifier) wait(ctx context.Context) error {
	if v.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(v.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// report prints the footer and maps missing models to ErrModelsMissing.
func (v *verifier) report(ctx context.Context, result *Result) error {
	v.out.Plain("")

	if len(result.Missing) == 0 {
		v.out.Success("All %d Hugging Face models verified", result.Checked)
		v.out.Plain("PASS: All models verified.")

		return nil
	}

	v.out.Warning("%d Hugging Face model(s) not found:", len(result.Missing))

	for _, m := range result.Missing {
		v.out.Hint("- %s", m.Name)
	}

	logger.WarnKV(ctx, "Models missing", "missing", len(result.Missing), "checked", result.Checked)
	v.out.Plain("FAIL: Some models are unavailable. Fix mappings or remove entries.")

	return fmt.Errorf("%d of %d: %w", len(result.Missing), result.Checked, ErrModelsMissing)
}
