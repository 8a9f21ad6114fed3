package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_LinkTemplate_SubstitutesContext(t *testing.T) {
	r := NewMustache()

	out, err := r.Render(DefaultLinkTemplate, map[string]any{
		"displayName":  "List<T>",
		"relativePath": "ns.b.md",
	})
	require.NoError(t, err)
	require.Equal(t, "[List<T>](ns.b.md)", out)
}

func TestRender_PageTemplate_SectionsFollowContext(t *testing.T) {
	r := NewMustache()

	out, err := r.Render(DefaultPageTemplate, map[string]any{
		"name":           "Widget",
		"namespace":      "Ns",
		"assembly":       "Ns.Core",
		"summary":        "A widget.",
		"hasInheritance": true,
		"inheritance":    []string{"System.Object"},
		"hasProperties":  true,
		"properties": []map[string]any{
			{"uid": "Ns.Widget.Size", "summary": "The size."},
		},
		"hasConstructors": false,
		"hasFields":       false,
		"hasMethods":      false,
		"hasEvents":       false,
		"hasImplements":   false,
	})
	require.NoError(t, err)
	require.Contains(t, out, "# Widget")
	require.Contains(t, out, "Namespace: Ns")
	require.Contains(t, out, `<xref href="System.Object"></xref>`)
	require.Contains(t, out, `<xref href="Ns.Widget.Size"></xref>`)
	require.NotContains(t, out, "## Methods")
}

func TestRender_InvalidTemplate_ReturnsRenderError(t *testing.T) {
	r := NewMustache()

	_, err := r.Render("{{#open}}never closed", map[string]any{})
	require.Error(t, err)
}
