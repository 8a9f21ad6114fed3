// Package doctree assembles the flat record list into per-type documentation
// trees via parentUid matching.
package doctree

import (
	"sort"

	"git.home.luguber.info/inful/refdocs/internal/diag"
	"git.home.luguber.info/inful/refdocs/internal/metadata"
)

// Node is one assembled documentation tree node. Member nodes live in five
// ordered buckets; attachment order follows source-list order and callers
// needing display order sort explicitly.
type Node struct {
	UID        string
	Name       string
	FullName   string
	Namespace  string
	Kind       metadata.Kind
	Summary    string
	Remarks    string
	Syntax     *metadata.Syntax
	Assemblies []string
	Inherits   []string
	Implements []string
	Exceptions []metadata.Exception

	Constructors []*Node
	Fields       []*Node
	Properties   []*Node
	Methods      []*Node
	Events       []*Node
}

// Assembler builds trees from a one-time parentUid -> children index, so each
// Build is O(subtree) instead of re-scanning the full record list per node.
type Assembler struct {
	children map[string][]*metadata.Record
	diags    *diag.Collector
}

// NewAssembler indexes the full record list once. The index preserves
// source-list order within each parent bucket.
func NewAssembler(records []*metadata.Record, diags *diag.Collector) *Assembler {
	idx := make(map[string][]*metadata.Record)
	for _, rec := range records {
		if rec.UID == "" || rec.ParentUID == "" {
			continue
		}
		idx[rec.ParentUID] = append(idx[rec.ParentUID], rec)
	}
	return &Assembler{children: idx, diags: diags}
}

// Build assembles the tree rooted at rec. Parent links are plain strings the
// upstream parser does not guarantee acyclic, so attachment carries a visited
// set; uids are unique, making one set per tree equivalent to per-path
// semantics.
func (a *Assembler) Build(rec *metadata.Record) *Node {
	visited := map[string]struct{}{rec.UID: {}}
	return a.build(rec, visited)
}

func (a *Assembler) build(rec *metadata.Record, visited map[string]struct{}) *Node {
	node := newNode(rec)
	for _, child := range a.children[rec.UID] {
		if _, seen := visited[child.UID]; seen {
			if a.diags != nil {
				a.diags.Add(diag.Diagnostic{Kind: diag.ParentCycle, UID: child.UID, Message: "parent chain loops back; attachment dropped"})
			}
			continue
		}
		visited[child.UID] = struct{}{}

		switch child.Kind {
		case metadata.KindConstructor:
			node.Constructors = append(node.Constructors, a.build(child, visited))
		case metadata.KindField:
			node.Fields = append(node.Fields, newNode(child))
		case metadata.KindProperty:
			node.Properties = append(node.Properties, newNode(child))
		case metadata.KindMethod, metadata.KindOperator:
			node.Methods = append(node.Methods, a.build(child, visited))
		case metadata.KindEvent:
			node.Events = append(node.Events, newNode(child))
		}
	}
	return node
}

func newNode(rec *metadata.Record) *Node {
	return &Node{
		UID:        rec.UID,
		Name:       rec.SimpleName(),
		FullName:   rec.FullName,
		Namespace:  rec.Namespace,
		Kind:       rec.Kind,
		Summary:    rec.Summary,
		Remarks:    rec.Remarks,
		Syntax:     rec.Syntax,
		Assemblies: rec.Assemblies,
		Inherits:   rec.Inherits,
		Implements: rec.Implements,
		Exceptions: rec.Exceptions,
	}
}

// SortMembers orders every member bucket by display name, recursively. Tree
// attachment itself never sorts; rendering opts in.
func (n *Node) SortMembers() {
	for _, bucket := range [][]*Node{n.Constructors, n.Fields, n.Properties, n.Methods, n.Events} {
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Name < bucket[j].Name })
		for _, child := range bucket {
			child.SortMembers()
		}
	}
}

// ContextMap flattens the node into the context value handed to the template
// renderer.
func (n *Node) ContextMap() map[string]any {
	ctx := map[string]any{
		"uid":       n.UID,
		"name":      n.Name,
		"fullName":  n.FullName,
		"namespace": n.Namespace,
		"kind":      string(n.Kind),
		"summary":   n.Summary,
		"remarks":   n.Remarks,
	}
	if len(n.Assemblies) > 0 {
		ctx["assembly"] = n.Assemblies[0]
		ctx["assemblies"] = n.Assemblies
	}
	if n.Syntax != nil && n.Syntax.Content != "" {
		ctx["syntax"] = n.Syntax.Content
	}
	ctx["inheritance"] = n.Inherits
	ctx["hasInheritance"] = len(n.Inherits) > 0
	ctx["implements"] = n.Implements
	ctx["hasImplements"] = len(n.Implements) > 0

	buckets := []struct {
		key   string
		nodes []*Node
	}{
		{"constructors", n.Constructors},
		{"fields", n.Fields},
		{"properties", n.Properties},
		{"methods", n.Methods},
		{"events", n.Events},
	}
	for _, b := range buckets {
		members := make([]map[string]any, 0, len(b.nodes))
		for _, m := range b.nodes {
			members = append(members, m.ContextMap())
		}
		ctx[b.key] = members
		ctx["has"+titleKey(b.key)] = len(members) > 0
	}
	return ctx
}

func titleKey(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
