// Package render is the template-substitution boundary: given template text
// and a context value it deterministically returns a string. The rest of the
// system depends only on the Renderer interface.
package render

import (
	"github.com/cbroglie/mustache"

	"git.home.luguber.info/inful/refdocs/internal/errors"
)

// Renderer substitutes a context value into template text.
type Renderer interface {
	Render(templateText string, context any) (string, error)
}

// Mustache renders logic-less mustache templates.
type Mustache struct{}

// NewMustache returns the default mustache-backed renderer.
func NewMustache() Mustache { return Mustache{} }

// Render implements Renderer.
func (Mustache) Render(templateText string, context any) (string, error) {
	out, err := mustache.Render(templateText, context)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryRender, errors.SeverityError, "template render failed")
	}
	return out, nil
}

// DefaultLinkTemplate renders one resolved link as markdown. An empty
// relativePath with no anchor means a self reference; the templates keep the
// plain display name readable in that case too.
const DefaultLinkTemplate = "[{{{displayName}}}]({{{relativePath}}})"
