package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/diag"
	"git.home.luguber.info/inful/refdocs/internal/manifest"
)

type memWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemWriter() *memWriter { return &memWriter{files: make(map[string][]byte)} }

func (w *memWriter) Write(path string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = data
	return nil
}

func (w *memWriter) get(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.files[path])
}

func writeMetadata(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testConfig(t *testing.T, dir string, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Input: config.InputConfig{Globs: []string{filepath.Join(dir, "*.yml")}},
		Output: config.OutputConfig{
			Directory:  filepath.Join(dir, "out"),
			Extension:  ".md",
			Layout:     "flat",
			CasePolicy: "lower",
		},
		Workers: 2,
	}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

const mutualRefs = `
items:
  - uid: Ns.A
    id: A
    type: Class
    name: A
    namespace: Ns
    assemblies: [Ns.Core]
    summary: 'See <xref href="Ns.B"></xref>.'
  - uid: Ns.B
    id: B
    type: Class
    name: B
    namespace: Ns
    assemblies: [Ns.Core]
    summary: 'See <xref href="Ns.A"></xref>.'
`

func TestRun_FlatLayout_MutualReferencesResolve(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "ns.yml", mutualRefs)
	w := newMemWriter()
	p := New(testConfig(t, dir, nil), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Documents)
	require.Zero(t, result.Unresolved)

	require.Contains(t, w.get("ns.a.md"), "[B](ns.b.md)")
	require.Contains(t, w.get("ns.b.md"), "[A](ns.a.md)")
	require.Equal(t, []string{"Ns.Core"}, result.Assemblies)
	require.Equal(t, []string{"Ns"}, result.Namespaces)
}

const combinedMembers = `
items:
  - uid: N.C
    id: C
    type: Class
    name: C
    namespace: N
    summary: 'Has <xref href="N.C.P"></xref>.'
  - uid: N.C.P
    id: P
    parent: N.C
    type: Property
    name: P
    namespace: N
    summary: A property.
`

func TestRun_CombineMembers_MemberResolvesToParentAnchor(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "n.yml", combinedMembers)
	w := newMemWriter()
	p := New(testConfig(t, dir, func(c *config.Config) { c.Output.CombineMembers = true }), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Combined)
	require.Contains(t, w.get("n.c.md"), "[P](#p)")
}

func TestRun_UnknownUID_DegradesWithDiagnostic(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "n.yml", `
items:
  - uid: N.C
    id: C
    type: Class
    name: C
    namespace: N
    summary: 'Uses <xref href="Totally.Unknown"></xref>.'
`)
	w := newMemWriter()
	p := New(testConfig(t, dir, nil), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Unresolved)
	require.Contains(t, w.get("n.c.md"), "`Unknown`")

	found := false
	for _, d := range result.Diagnostics {
		if d.Kind == diag.UnresolvedRef && d.UID == "Totally.Unknown" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRun_FrameworkFallback_ResolvesToCanonicalURL(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "n.yml", `
items:
  - uid: N.C
    id: C
    type: Class
    name: C
    namespace: N
    summary: 'Wraps <xref href="System.Collections.Generic.List`+"`"+`1"></xref>.'
`)
	w := newMemWriter()
	cfg := testConfig(t, dir, func(c *config.Config) {
		c.Xref.Fallbacks = []config.XrefFallback{{Prefix: "System.", URLTemplate: "https://learn.microsoft.com/dotnet/api/{uid}"}}
	})
	p := New(cfg, WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Unresolved)
	require.Contains(t, w.get("n.c.md"), "[List](https://learn.microsoft.com/dotnet/api/system.collections.generic.list-1)")
}

func TestRun_NamespaceLayout_RelativePathsBetweenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "n.yml", `
items:
  - uid: Lib.UI.Button
    id: Button
    type: Class
    name: Button
    namespace: Lib.UI
    summary: 'Draws a <xref href="Lib.Glyph"></xref>.'
  - uid: Lib.Glyph
    id: Glyph
    type: Class
    name: Glyph
    namespace: Lib
`)
	w := newMemWriter()
	p := New(testConfig(t, dir, func(c *config.Config) { c.Output.Layout = "namespace" }), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Unresolved)
	require.Contains(t, w.get("lib-ui/button.md"), "[Glyph](../lib/glyph.md)")
}

func TestRun_WithManifest_SecondRunSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "ns.yml", mutualRefs)
	store, err := manifest.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	cfg := testConfig(t, dir, nil)
	w := newMemWriter()

	first, err := New(cfg, WithWriter(w), WithManifest(store)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Documents)
	require.Zero(t, first.Skipped)

	second, err := New(cfg, WithWriter(w), WithManifest(store)).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, second.Documents)
	require.Equal(t, 2, second.Skipped)
	require.Empty(t, second.Stale)
}

func TestRun_VerifyEnabled_ConsistentPlanHasNoBrokenLinks(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "ns.yml", mutualRefs)
	w := newMemWriter()
	p := New(testConfig(t, dir, func(c *config.Config) { c.Verify.Enabled = true }), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.BrokenLinks)
}

func TestRun_RecordWithoutUID_SkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "n.yml", `
items:
  - id: Nameless
    type: Class
    name: Nameless
  - uid: N.C
    id: C
    type: Class
    name: C
    namespace: N
`)
	w := newMemWriter()
	p := New(testConfig(t, dir, nil), WithWriter(w))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Documents)

	skipped := 0
	for _, d := range result.Diagnostics {
		if d.Kind == diag.RecordSkipped {
			skipped++
		}
	}
	require.Equal(t, 1, skipped)
}
