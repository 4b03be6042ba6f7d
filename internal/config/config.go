package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the update and verify commands.
type Config struct {
	// DataFile is the catalog JSON path, relative to the project root.
	DataFile string `yaml:"data_file"`
	// Scraper describes the external program that rewrites DataFile.
	Scraper Scraper `yaml:"scraper"`
	// Build describes the release build that embeds DataFile.
	Build Build `yaml:"build"`
	// Verify holds the settings of the model availability check.
	Verify Verify `yaml:"verify"`
	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string `yaml:"log_level"`
}

// Scraper is invoked as `<Interpreter> <Script> <Args...>` from the project root.
type Scraper struct {
	// Interpreter must be resolvable on PATH, otherwise the update aborts.
	Interpreter string `yaml:"interpreter"`
	// Script is the scraper entry point, relative to the project root.
	Script string `yaml:"script"`
	// Args are extra arguments appended after Script.
	Args []string `yaml:"args,omitempty"`
}

// Build is invoked as `<Tool> <Args...>` from the project root.
type Build struct {
	// Tool is looked up on PATH; when missing the build step is skipped.
	Tool string `yaml:"tool"`
	// Args selects the release build.
	Args []string `yaml:"args"`
	// Artifact is the binary produced by the build, relative to the project root.
	Artifact string `yaml:"artifact"`
}

// Verify configures the Hugging Face availability check.
type Verify struct {
	// Endpoint is the URL prefix a model name is appended to.
	Endpoint string `yaml:"endpoint"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
	// Delay is the pause between two requests.
	Delay time.Duration `yaml:"delay"`
	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is looked up in the project root when no path is given.
	DefaultConfigFilename = "model-updater.yaml"

	// DefaultDataFile is the catalog embedded into the llmfit binary.
	DefaultDataFile = "data/hf_models.json"

	// DefaultInterpreter runs the scraper script.
	DefaultInterpreter = "python3"

	// DefaultScript is the scraper entry point.
	DefaultScript = "scripts/scrape_hf_models.py"

	// DefaultBuildTool produces the release binary.
	DefaultBuildTool = "cargo"

	// DefaultArtifact is the release binary path.
	DefaultArtifact = "target/release/llmfit"

	// DefaultVerifyEndpoint is the Hugging Face model API prefix.
	DefaultVerifyEndpoint = "https://huggingface.co/api/models/"

	// DefaultUserAgent identifies verify requests.
	DefaultUserAgent = "llmfit-verify/1.0"

	// DefaultVerifyDelay keeps verify below the Hub rate limits.
	DefaultVerifyDelay = 300 * time.Millisecond

	// DefaultVerifyTimeout bounds a single verify request.
	DefaultVerifyTimeout = 10 * time.Second

	// DefaultLogLevel keeps stderr quiet unless something goes wrong.
	DefaultLogLevel = "warn"

	// DefaultFilePermissions is the permission of saved settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAbsolutePath is returned for paths that must stay inside the project root.
	errAbsolutePath = errors.New("path must be relative to the project root")
)

// Default returns the settings used when no settings file exists.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults on an empty config, it cannot fail here.
	_ = Validate(cfg)

	return cfg
}

// Load reads the settings for a project.
//
// An explicit path must exist. Without one, DefaultConfigFilename is looked up
// in projectRoot and Default is used when it is absent.
func Load(projectRoot, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(projectRoot, DefaultConfigFilename)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	setDefault(&cfg.DataFile, DefaultDataFile)
	setDefault(&cfg.Scraper.Interpreter, DefaultInterpreter)
	setDefault(&cfg.Scraper.Script, DefaultScript)
	setDefault(&cfg.Build.Tool, DefaultBuildTool)
	setDefault(&cfg.Build.Artifact, DefaultArtifact)
	setDefault(&cfg.Verify.Endpoint, DefaultVerifyEndpoint)
	setDefault(&cfg.Verify.UserAgent, DefaultUserAgent)
	setDefault(&cfg.LogLevel, DefaultLogLevel)

	if len(cfg.Build.Args) == 0 {
		cfg.Build.Args = []string{"build", "--release"}
	}

	if cfg.Verify.Delay <= 0 {
		cfg.Verify.Delay = DefaultVerifyDelay
	}

	if cfg.Verify.Timeout <= 0 {
		cfg.Verify.Timeout = DefaultVerifyTimeout
	}

	for name, value := range map[string]string{
		"data_file":      cfg.DataFile,
		"scraper.script": cfg.Scraper.Script,
		"build.artifact": cfg.Build.Artifact,
	} {
		if filepath.IsAbs(value) {
			return fmt.Errorf("%s %q: %w", name, value, errAbsolutePath)
		}
	}

	if _, err := url.ParseRequestURI(cfg.Verify.Endpoint); err != nil {
		return fmt.Errorf("invalid verify endpoint: %w", err)
	}

	return nil
}

// Resolve joins a configured relative path with the project root.
func Resolve(projectRoot, path string) string {
	return filepath.Join(projectRoot, filepath.FromSlash(path))
}

// CommandLine renders the build invocation for manual instructions.
func (b Build) CommandLine() string {
	return strings.Join(append([]string{b.Tool}, b.Args...), " ")
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
