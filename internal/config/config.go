// Package config loads and validates the run configuration.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/refdocs/internal/errors"
	"git.home.luguber.info/inful/refdocs/internal/layout"
	"git.home.luguber.info/inful/refdocs/internal/naming"
)

// Config represents the application configuration
type Config struct {
	Input     InputConfig    `yaml:"input"`
	Output    OutputConfig   `yaml:"output"`
	Templates TemplateConfig `yaml:"templates"`
	Xref      XrefConfig     `yaml:"xref"`
	Verify    VerifyConfig   `yaml:"verify"`
	Manifest  ManifestConfig `yaml:"manifest"`
	Workers   int            `yaml:"workers,omitempty"` // 0 = GOMAXPROCS
}

// InputConfig selects the metadata files to load.
type InputConfig struct {
	Globs []string `yaml:"globs"`
}

// OutputConfig controls where and how documents are laid out.
type OutputConfig struct {
	Directory      string `yaml:"directory"`
	Extension      string `yaml:"extension"`
	Layout         string `yaml:"layout"`
	CasePolicy     string `yaml:"case_policy"`
	CombineMembers bool   `yaml:"combine_members"`
}

// TemplateConfig points at the mustache templates. Empty values select the
// built-in defaults.
type TemplateConfig struct {
	PagePath     string `yaml:"page,omitempty"`     // path to a page template file
	LinkTemplate string `yaml:"link,omitempty"`     // inline link template
	FallbackHref string `yaml:"fallback,omitempty"` // href for wholly unresolved uids
}

// XrefFallback maps a foreign-framework uid prefix to a canonical URL
// template containing "{uid}".
type XrefFallback struct {
	Prefix      string `yaml:"prefix"`
	URLTemplate string `yaml:"url_template"`
}

// XrefConfig configures foreign-framework resolution.
type XrefConfig struct {
	Fallbacks []XrefFallback `yaml:"fallbacks,omitempty"`
}

// VerifyConfig enables the post-generation link check and optional event
// publishing.
type VerifyConfig struct {
	Enabled bool       `yaml:"enabled"`
	NATS    NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures broken-link event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ManifestConfig configures the optional build manifest database.
type ManifestConfig struct {
	Path string `yaml:"path,omitempty"` // empty disables the manifest
}

// Load loads configuration from the specified file. Environment variables in
// the YAML content are expanded; a .env file, when present, seeds them first.
func Load(configPath string) (*Config, error) {
	// Existing process environment always wins over .env contents.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "cannot read configuration file").
			WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "cannot parse configuration file").
			WithContext("path", configPath)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = "./docs"
	}
	if c.Output.Extension == "" {
		c.Output.Extension = ".md"
	}
	if c.Output.Layout == "" {
		c.Output.Layout = string(layout.StrategyFlat)
	}
	if c.Output.CasePolicy == "" {
		c.Output.CasePolicy = string(naming.CaseLower)
	}
	if c.Verify.NATS.Subject == "" {
		c.Verify.NATS.Subject = "refdocs.links.broken"
	}
	if len(c.Xref.Fallbacks) == 0 {
		c.Xref.Fallbacks = []XrefFallback{
			{Prefix: "System.", URLTemplate: "https://learn.microsoft.com/dotnet/api/{uid}"},
			{Prefix: "Microsoft.", URLTemplate: "https://learn.microsoft.com/dotnet/api/{uid}"},
		}
	}
}

// Validate checks the configuration before discovery starts; any problem here
// is fatal.
func (c *Config) Validate() error {
	if len(c.Input.Globs) == 0 {
		return errors.ConfigError("input.globs is required")
	}
	if _, err := layout.ParseStrategy(c.Output.Layout); err != nil {
		return err
	}
	if _, err := naming.ParseCasePolicy(c.Output.CasePolicy); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		return errors.ConfigError("output.extension must start with '.'").
			WithContext("extension", c.Output.Extension)
	}
	for _, fb := range c.Xref.Fallbacks {
		if fb.Prefix == "" || !strings.Contains(fb.URLTemplate, "{uid}") {
			return errors.ConfigError("xref fallback needs a prefix and a url_template containing {uid}").
				WithContext("prefix", fb.Prefix)
		}
	}
	if c.Verify.NATS.Enabled && c.Verify.NATS.URL == "" {
		return errors.ConfigError("verify.nats.url is required when NATS publishing is enabled")
	}
	return nil
}

// Strategy returns the parsed layout strategy. Validate must have succeeded.
func (c *Config) Strategy() layout.Strategy {
	s, _ := layout.ParseStrategy(c.Output.Layout)
	return s
}

// CasePolicy returns the parsed case policy. Validate must have succeeded.
func (c *Config) CasePolicy() naming.CasePolicy {
	p, _ := naming.ParseCasePolicy(c.Output.CasePolicy)
	return p
}
