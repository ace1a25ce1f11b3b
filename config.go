package gridloader

import (
	"errors"
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoCountries     = errors.New("at least one country is required")
	ErrNoDocuments     = errors.New("at least one document type is required")
	ErrMissingAPIToken = errors.New("ENTSOE_API_TOKEN is required")
	ErrMissingProject  = errors.New("BIGQUERY_PROJECT is required")
	ErrMissingDataset  = errors.New("BIGQUERY_DATASET is required")
)

// DocumentConfig declares one document type to ingest.
type DocumentConfig struct {
	Type DocumentType `yaml:"type"`
	Name string       `yaml:"name"`
}

// Config is the full pipeline configuration: business parameters from the
// YAML file, secrets from the environment. It is built once at process
// start and passed into the pipeline; nothing reads the environment after
// that.
type Config struct {
	Countries  []string         `yaml:"countries"`
	Documents  []DocumentConfig `yaml:"documents"`
	WindowDays int              `yaml:"window_days"`

	// Secrets and destinations, environment-sourced.
	APIToken      string `yaml:"-"`
	Project       string `yaml:"-"`
	Dataset       string `yaml:"-"`
	ArchiveBucket string `yaml:"-"`
	SlackToken    string `yaml:"-"`
	SlackChannel  string `yaml:"-"`
}

// LoadConfig reads the YAML file, merges environment secrets and validates
// the result. Any problem is a *ConfigError: the run must not start.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Err: xerrors.Errorf("failed to read config file: %w", err)}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Err: xerrors.Errorf("failed to parse YAML: %w", err)}
	}

	cfg.APIToken = os.Getenv("ENTSOE_API_TOKEN")
	cfg.Project = os.Getenv("BIGQUERY_PROJECT")
	cfg.Dataset = os.Getenv("BIGQUERY_DATASET")
	cfg.ArchiveBucket = os.Getenv("ARCHIVE_BUCKET")
	cfg.SlackToken = os.Getenv("SLACK_TOKEN")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")

	if cfg.WindowDays == 0 {
		cfg.WindowDays = 30
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration before any task executes: every
// configured document type must route to a table and every country must
// have a known bidding zone.
func (c *Config) Validate() error {
	if len(c.Countries) == 0 {
		return &ConfigError{Err: ErrNoCountries}
	}

	if len(c.Documents) == 0 {
		return &ConfigError{Err: ErrNoDocuments}
	}

	if c.APIToken == "" {
		return &ConfigError{Err: ErrMissingAPIToken}
	}

	if c.Project == "" {
		return &ConfigError{Err: ErrMissingProject}
	}

	if c.Dataset == "" {
		return &ConfigError{Err: ErrMissingDataset}
	}

	for _, d := range c.Documents {
		if _, err := TableFor(d.Type); err != nil {
			return err
		}
	}

	for _, country := range c.Countries {
		if _, err := areaFor(country); err != nil {
			return err
		}
	}

	return nil
}
