package xref

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/metadata"
)

func TestResolve_GeneratedFileWinsOverReferenceHref(t *testing.T) {
	b := NewTableBuilder(nil)
	b.AddReference(&metadata.Reference{UID: "Ns.A", Name: "A", Href: "https://elsewhere.example/a"})
	b.SetFile("Ns.A", FileInfo{Path: "ns.a.md"})
	table := b.Freeze()

	res := table.Resolve("Ns.A")
	require.Equal(t, ResolvedInternal, res.Kind)
	require.Equal(t, "ns.a.md", res.File.Path)
	require.Equal(t, "A", res.Name)
}

func TestResolve_ReferenceHref_External(t *testing.T) {
	b := NewTableBuilder(nil)
	b.AddReference(&metadata.Reference{UID: "Other.Thing", Name: "Thing", Href: "https://other.example/thing"})
	table := b.Freeze()

	res := table.Resolve("Other.Thing")
	require.Equal(t, ResolvedExternal, res.Kind)
	require.Equal(t, "https://other.example/thing", res.Href)
}

func TestResolve_FrameworkPrefix_CanonicalURL(t *testing.T) {
	rules := []FallbackRule{{Prefix: "System.", URLTemplate: "https://learn.microsoft.com/dotnet/api/{uid}"}}
	table := NewTableBuilder(rules).Freeze()

	res := table.Resolve("System.Collections.Generic.List`1")
	require.Equal(t, ResolvedFallback, res.Kind)
	require.Equal(t, "https://learn.microsoft.com/dotnet/api/system.collections.generic.list-1", res.Href)
}

func TestResolve_UnknownUID_Unresolved(t *testing.T) {
	table := NewTableBuilder(nil).Freeze()

	res := table.Resolve("Totally.Unknown")
	require.Equal(t, Unresolved, res.Kind)
}

func TestResolve_RepeatedLookups_Idempotent(t *testing.T) {
	b := NewTableBuilder(nil)
	b.SetFile("Ns.A", FileInfo{Path: "ns/a.md", Anchor: "x"})
	table := b.Freeze()

	first := table.Resolve("Ns.A")
	for range 10 {
		require.Equal(t, first, table.Resolve("Ns.A"))
	}
}

func TestFileInfo_Target_AppendsAnchor(t *testing.T) {
	require.Equal(t, "ns/a.md#x", FileInfo{Path: "ns/a.md", Anchor: "x"}.Target())
	require.Equal(t, "ns/a.md", FileInfo{Path: "ns/a.md"}.Target())
}

func TestDisplayName_StripsArityAndQualification(t *testing.T) {
	require.Equal(t, "List", DisplayName("System.Collections.Generic.List`1"))
	require.Equal(t, "String", DisplayName("System.String"))
	require.Equal(t, "Lonely", DisplayName("Lonely"))
}
