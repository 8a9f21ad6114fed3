package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/errors"
	"git.home.luguber.info/inful/refdocs/internal/layout"
	"git.home.luguber.info/inful/refdocs/internal/naming"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MinimalConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "input:\n  globs: [\"api/*.yml\"]\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ".md", cfg.Output.Extension)
	require.Equal(t, layout.StrategyFlat, cfg.Strategy())
	require.Equal(t, naming.CaseLower, cfg.CasePolicy())
	require.False(t, cfg.Output.CombineMembers)
	require.NotEmpty(t, cfg.Xref.Fallbacks)
}

func TestLoad_UnknownLayout_FailsBeforeDiscovery(t *testing.T) {
	path := writeConfig(t, "input:\n  globs: [\"api/*.yml\"]\noutput:\n  layout: by-color\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.IsFatal(err))
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoad_MissingGlobs_Fails(t *testing.T) {
	path := writeConfig(t, "output:\n  layout: flat\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.IsFatal(err))
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("REFDOCS_TEST_OUT", "/tmp/generated")
	path := writeConfig(t, "input:\n  globs: [\"api/*.yml\"]\noutput:\n  directory: ${REFDOCS_TEST_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/generated", cfg.Output.Directory)
}

func TestValidate_BadFallbackTemplate_Fails(t *testing.T) {
	cfg := &Config{
		Input:  InputConfig{Globs: []string{"x"}},
		Output: OutputConfig{Extension: ".md", Layout: "flat", CasePolicy: "lower"},
		Xref:   XrefConfig{Fallbacks: []XrefFallback{{Prefix: "System.", URLTemplate: "https://example.com/api"}}},
	}
	require.Error(t, cfg.Validate())
}

func TestValidate_NATSEnabledWithoutURL_Fails(t *testing.T) {
	cfg := &Config{
		Input:  InputConfig{Globs: []string{"x"}},
		Output: OutputConfig{Extension: ".md", Layout: "flat", CasePolicy: "lower"},
		Verify: VerifyConfig{Enabled: true, NATS: NATSConfig{Enabled: true}},
	}
	require.Error(t, cfg.Validate())
}
