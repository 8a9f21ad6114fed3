// Package xref resolves uids into links: it owns the uid -> output-file table
// built during discovery, the external-reference map, the relative path
// calculator, and the cross-reference tag processor applied to rendered text.
package xref

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/metadata"
	"git.home.luguber.info/inful/refdocs/internal/naming"
)

// FileInfo is the planned output location for one uid. Anchor is set only
// when a member is combined onto its parent's page.
type FileInfo struct {
	Path   string
	Anchor string
}

// Target returns the path with the anchor fragment appended when present.
func (f FileInfo) Target() string {
	if f.Anchor != "" {
		return f.Path + "#" + f.Anchor
	}
	return f.Path
}

// FallbackRule maps uids under a foreign-framework prefix to a canonical URL.
// URLTemplate must contain "{uid}", which receives the lower-cased,
// arity-converted uid.
type FallbackRule struct {
	Prefix      string
	URLTemplate string
}

// TableBuilder accumulates discovery results. It is not safe for concurrent
// use; the pipeline funnels all writes through a single merge goroutine.
type TableBuilder struct {
	files map[string]FileInfo
	refs  map[string]metadata.Reference
	rules []FallbackRule
}

// NewTableBuilder creates an empty builder carrying the configured
// foreign-framework fallback rules.
func NewTableBuilder(rules []FallbackRule) *TableBuilder {
	return &TableBuilder{
		files: make(map[string]FileInfo),
		refs:  make(map[string]metadata.Reference),
		rules: rules,
	}
}

// SetFile registers or overwrites the planned output file for uid. Overwrites
// only happen during the combine-members rewrite; once Freeze is called the
// mapping is immutable.
func (b *TableBuilder) SetFile(uid string, fi FileInfo) {
	b.files[uid] = fi
}

// File returns the currently planned file for uid.
func (b *TableBuilder) File(uid string) (FileInfo, bool) {
	fi, ok := b.files[uid]
	return fi, ok
}

// Len returns the number of registered uids.
func (b *TableBuilder) Len() int { return len(b.files) }

// AddReference records an external-reference entry. The first entry for a uid
// wins; generated files always take priority over references at resolve time
// regardless.
func (b *TableBuilder) AddReference(ref *metadata.Reference) {
	if ref == nil || ref.UID == "" {
		return
	}
	if _, ok := b.refs[ref.UID]; !ok {
		b.refs[ref.UID] = *ref
	}
}

// Freeze returns the immutable resolution table. The builder must not be used
// afterwards.
func (b *TableBuilder) Freeze() *Table {
	t := &Table{files: b.files, refs: b.refs, rules: b.rules}
	b.files = nil
	b.refs = nil
	return t
}

// ResolutionKind classifies how a uid was resolved.
type ResolutionKind int

const (
	ResolvedInternal ResolutionKind = iota
	ResolvedExternal
	ResolvedFallback
	Unresolved
)

// String returns the diagnostic label for the kind.
func (k ResolutionKind) String() string {
	switch k {
	case ResolvedInternal:
		return "internal"
	case ResolvedExternal:
		return "external"
	case ResolvedFallback:
		return "fallback"
	}
	return "unresolved"
}

// Resolution is the outcome of looking up one uid.
type Resolution struct {
	UID  string
	Kind ResolutionKind
	File FileInfo // valid when Kind == ResolvedInternal
	Href string   // valid when Kind is ResolvedExternal or ResolvedFallback
	Name string   // reference display name when known, else ""
}

// Table is the frozen uid resolution table. It is safe for concurrent readers.
type Table struct {
	files map[string]FileInfo
	refs  map[string]metadata.Reference
	rules []FallbackRule
}

// Lookup returns the planned output file for uid.
func (t *Table) Lookup(uid string) (FileInfo, bool) {
	fi, ok := t.files[uid]
	return fi, ok
}

// Len returns the number of uids with generated files.
func (t *Table) Len() int { return len(t.files) }

// Paths returns the distinct planned output paths, unordered.
func (t *Table) Paths() []string {
	seen := make(map[string]struct{}, len(t.files))
	out := make([]string, 0, len(t.files))
	for _, fi := range t.files {
		if _, ok := seen[fi.Path]; ok {
			continue
		}
		seen[fi.Path] = struct{}{}
		out = append(out, fi.Path)
	}
	return out
}

// fallbackNormalizer produces the lower-cased, arity-converted uid form used
// in canonical framework URLs. Independent of the run's case policy.
var fallbackNormalizer = naming.NewNormalizer(naming.CaseLower)

// Resolve applies the fixed resolution priority: generated file, then
// reference href, then framework-prefix fallback, then unresolved. A uid with
// both a reference entry and a generated file resolves as internal.
func (t *Table) Resolve(uid string) Resolution {
	res := Resolution{UID: uid, Kind: Unresolved}
	if ref, ok := t.refs[uid]; ok {
		res.Name = ref.Name
	}
	if fi, ok := t.files[uid]; ok {
		res.Kind = ResolvedInternal
		res.File = fi
		return res
	}
	if ref, ok := t.refs[uid]; ok && ref.Href != "" {
		res.Kind = ResolvedExternal
		res.Href = ref.Href
		return res
	}
	for _, rule := range t.rules {
		if strings.HasPrefix(uid, rule.Prefix) {
			res.Kind = ResolvedFallback
			res.Href = strings.ReplaceAll(rule.URLTemplate, "{uid}", fallbackNormalizer.SafeName(uid))
			return res
		}
	}
	return res
}

var arityDisplayPattern = regexp.MustCompile("`+[0-9]+$")

// DisplayName derives a display name from a uid: the last '.'-delimited
// segment with any generic-arity suffix stripped.
func DisplayName(uid string) string {
	seg := uid
	if i := strings.LastIndex(uid, "."); i >= 0 {
		seg = uid[i+1:]
	}
	return arityDisplayPattern.ReplaceAllString(seg, "")
}
