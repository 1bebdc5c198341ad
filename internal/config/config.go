// Package config provides configuration management for gradaudit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRADAUDIT_"

// Config represents the gradaudit configuration file.
type Config struct {
	Gradaudit AuditConfig `yaml:"gradaudit" json:"gradaudit"`
}

// AuditConfig contains the main gradaudit settings.
type AuditConfig struct {
	// Term is the label of the term being audited, e.g. "Fall 2020".
	Term string `yaml:"term" json:"term"`

	// Policy is the path to a policy file layered over the built-in policy.
	// Empty means the built-in policy.
	Policy string `yaml:"policy" json:"policy"`

	Roster RosterConfig `yaml:"roster" json:"roster"`
	Output OutputConfig `yaml:"output" json:"output"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// RosterConfig selects the roster backend. At most one source may be set.
type RosterConfig struct {
	// File is a CSV roster.
	File string `yaml:"file" json:"file"`
	// DSN is a PostgreSQL connection string.
	DSN string `yaml:"dsn" json:"dsn" validate:"excluded_with=File"`
}

// OutputConfig contains report settings.
type OutputConfig struct {
	Format string `yaml:"format" json:"format" validate:"oneof=table json csv pdf"`
	// Path is the report file; empty means stdout.
	Path string `yaml:"path" json:"path"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=console json"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gradaudit: AuditConfig{
			Output: OutputConfig{
				Format: "table",
			},
			Log: LogConfig{
				Level:  "warn",
				Format: "console",
			},
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ErrNotFound is returned by FindConfig when no configuration file exists.
var ErrNotFound = errors.New("no gradaudit configuration found")

// FindConfig searches for a configuration file starting from the given path.
func FindConfig(startPath string) (string, error) {
	candidates := []string{
		".gradaudit/config.yaml",
		"gradaudit.yaml",
		"gradaudit.yml",
	}

	dir := startPath
	for {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

// LoadFromDir loads configuration found from the given directory upward,
// or the defaults when there is none. Relative paths in the file are
// resolved against the directory holding the file.
func LoadFromDir(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadResolved(path)
}

// LoadResolved loads the file at path and resolves relative paths in it
// against the project directory: the directory holding the file, or its
// parent for .gradaudit/config.yaml.
func LoadResolved(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	if filepath.Base(base) == ".gradaudit" {
		base = filepath.Dir(base)
	}
	cfg.resolvePaths(base)
	return cfg, nil
}

func (c *Config) resolvePaths(baseDir string) {
	c.Gradaudit.Policy = resolve(baseDir, c.Gradaudit.Policy)
	c.Gradaudit.Roster.File = resolve(baseDir, c.Gradaudit.Roster.File)
	c.Gradaudit.Output.Path = resolve(baseDir, c.Gradaudit.Output.Path)
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from GRADAUDIT_* variables read through
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
			*dst = v
		}
	}

	g := &c.Gradaudit
	set("TERM", &g.Term)
	set("POLICY", &g.Policy)
	set("ROSTER", &g.Roster.File)
	set("ROSTER_DSN", &g.Roster.DSN)
	set("FORMAT", &g.Output.Format)
	set("OUTPUT", &g.Output.Path)
	set("LOG_LEVEL", &g.Log.Level)
	set("LOG_FORMAT", &g.Log.Format)
}

var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s], got %q", fieldName(fe), fe.Param(), fe.Value()))
		case "excluded_with":
			problems = append(problems, "roster file and dsn are mutually exclusive")
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s", fieldName(fe), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// RequireTerm returns an error when no term is configured.
func (c *Config) RequireTerm() error {
	if strings.TrimSpace(c.Gradaudit.Term) == "" {
		return fmt.Errorf("no term configured: use --term, %sTERM or the term setting", EnvPrefix)
	}
	return nil
}
