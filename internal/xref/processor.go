package xref

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/refdocs/internal/diag"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
	"git.home.luguber.info/inful/refdocs/internal/render"
)

// LinkInfo is the only shape handed to the link-rendering collaborator.
// RelativePath already carries the anchor fragment when applicable.
type LinkInfo struct {
	UID          string
	DisplayName  string
	RelativePath string
	IsExternal   bool
}

// contextMap adapts a LinkInfo for template substitution.
func (l LinkInfo) contextMap() map[string]any {
	return map[string]any{
		"uid":          l.UID,
		"displayName":  l.DisplayName,
		"relativePath": l.RelativePath,
		"isExternal":   l.IsExternal,
	}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithFallbackHref sets a caller-supplied href used for wholly unresolved
// uids instead of the degraded placeholder.
func WithFallbackHref(href string) ProcessorOption {
	return func(p *Processor) { p.fallbackHref = href }
}

// WithLinkTemplate overrides the link template.
func WithLinkTemplate(tpl string) ProcessorOption {
	return func(p *Processor) { p.linkTemplate = tpl }
}

// WithRecorder forwards per-marker resolution outcomes to a metrics recorder.
func WithRecorder(rec metrics.Recorder) ProcessorOption {
	return func(p *Processor) { p.recorder = rec }
}

// Processor rewrites xref markers in rendered text into link markup. It only
// reads the frozen table, so one Processor may serve concurrent documents.
type Processor struct {
	table        *Table
	renderer     render.Renderer
	linkTemplate string
	fallbackHref string
	diags        *diag.Collector
	recorder     metrics.Recorder
	log          *slog.Logger
}

// NewProcessor creates a Processor over a frozen table.
func NewProcessor(table *Table, renderer render.Renderer, diags *diag.Collector, opts ...ProcessorOption) *Processor {
	p := &Processor{
		table:        table,
		renderer:     renderer,
		linkTemplate: render.DefaultLinkTemplate,
		diags:        diags,
		recorder:     metrics.NoopRecorder{},
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process rewrites every <xref href="uid">override</xref> marker in text into
// rendered link markup, resolving relative paths from docPath. Markers may
// arrive entity-escaped from the rendering stage, so the whole input is
// decoded once up front. Unknown uids degrade to a placeholder and a
// diagnostic; they never fail the document.
func (p *Processor) Process(docPath, text string) string {
	decoded := html.UnescapeString(text)

	z := html.NewTokenizer(strings.NewReader(decoded))
	var out strings.Builder
	out.Grow(len(decoded))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// EOF; the tokenizer has consumed everything it will.
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(z.Raw())
			continue
		}
		// Token() lower-cases tag names and attribute keys in place inside
		// the tokenizer buffer, so the original bytes must be copied first
		// to keep non-marker tags byte-identical on passthrough.
		raw := append([]byte(nil), z.Raw()...)
		tok := z.Token()
		if tok.Data != "xref" {
			out.Write(raw)
			continue
		}

		uid, override := attrValue(tok, "href"), attrValue(tok, "name")
		if tt == html.StartTagToken {
			if inner := p.consumeInner(z); inner != "" {
				override = inner
			}
		}
		if uid == "" {
			// Marker without a target; keep the override text, if any.
			out.WriteString(override)
			continue
		}
		out.WriteString(p.renderMarker(docPath, uid, override))
	}

	return out.String()
}

// consumeInner reads tokens up to the matching </xref> and returns the inner
// text, which acts as an inline display-name override.
func (p *Processor) consumeInner(z *html.Tokenizer) string {
	var inner strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(inner.String())
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "xref" {
				return strings.TrimSpace(inner.String())
			}
		case html.TextToken:
			inner.Write(z.Text())
		}
	}
}

func (p *Processor) renderMarker(docPath, uid, override string) string {
	res := p.table.Resolve(uid)
	p.recorder.IncMarkerResolved(res.Kind.String())

	display := override
	if display == "" {
		display = res.Name
	}
	if display == "" {
		display = DisplayName(uid)
	}

	link := LinkInfo{UID: uid, DisplayName: display}
	switch res.Kind {
	case ResolvedInternal:
		link.RelativePath = RelativePath(docPath, res.File.Path)
		if res.File.Anchor != "" {
			link.RelativePath += "#" + res.File.Anchor
		}
	case ResolvedExternal, ResolvedFallback:
		link.RelativePath = res.Href
		link.IsExternal = true
	default:
		p.diags.Add(diag.Diagnostic{Kind: diag.UnresolvedRef, UID: uid, Doc: docPath, Message: "no file, reference, or fallback matches"})
		if p.fallbackHref == "" {
			// Degraded placeholder: keep the name readable, emit no dead href.
			return "`" + display + "`"
		}
		link.RelativePath = p.fallbackHref
		link.IsExternal = true
	}

	rendered, err := p.renderer.Render(p.linkTemplate, link.contextMap())
	if err != nil {
		p.log.Warn("link render failed", "uid", uid, "doc", docPath, "error", err)
		p.diags.Add(diag.Diagnostic{Kind: diag.RenderFailed, UID: uid, Doc: docPath, Message: err.Error()})
		return display
	}
	return rendered
}

func attrValue(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
