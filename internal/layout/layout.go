// Package layout computes the output path for every record under one of four
// layout strategies, and applies the optional combine-members rewrite.
package layout

import (
	"git.home.luguber.info/inful/refdocs/internal/errors"
	"git.home.luguber.info/inful/refdocs/internal/metadata"
	"git.home.luguber.info/inful/refdocs/internal/naming"
	"git.home.luguber.info/inful/refdocs/internal/util/sets"
	"git.home.luguber.info/inful/refdocs/internal/xref"
)

// Strategy selects how uids map to output paths.
type Strategy string

const (
	StrategyFlat              Strategy = "flat"
	StrategyNamespace         Strategy = "namespace"
	StrategyAssemblyNamespace Strategy = "assembly-namespace"
	StrategyAssemblyFlat      Strategy = "assembly-flat"
)

// ParseStrategy parses a configured strategy name. Empty selects the default
// (flat); anything unrecognized is a fatal configuration error.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyFlat:
		return StrategyFlat, nil
	case StrategyNamespace:
		return StrategyNamespace, nil
	case StrategyAssemblyNamespace:
		return StrategyAssemblyNamespace, nil
	case StrategyAssemblyFlat:
		return StrategyAssemblyFlat, nil
	}
	return "", errors.ConfigError("unknown layout strategy").WithContext("layout", name)
}

// Assigner computes output paths. It is a value type carrying its own
// configuration, so concurrent runs never interfere.
type Assigner struct {
	strategy Strategy
	norm     naming.Normalizer
	ext      string
}

// NewAssigner creates an Assigner for one strategy, case policy, and output
// extension.
func NewAssigner(strategy Strategy, norm naming.Normalizer, ext string) Assigner {
	return Assigner{strategy: strategy, norm: norm, ext: ext}
}

// PathFor computes the output path for one record. Flat layouts keep dots in
// the uid so the fully-qualified name stays readable and URL-stable; every
// other segment kind converts dots.
func (a Assigner) PathFor(rec *metadata.Record) string {
	switch a.strategy {
	case StrategyNamespace:
		return a.namespaceDir(rec) + "/" + a.simpleName(rec) + a.ext
	case StrategyAssemblyNamespace:
		return a.assemblyDir(rec) + "/" + a.namespaceDir(rec) + "/" + a.simpleName(rec) + a.ext
	case StrategyAssemblyFlat:
		return a.assemblyDir(rec) + "/" + a.simpleName(rec) + a.ext
	default:
		return a.norm.SafeNameOr(rec.UID, naming.FallbackType) + a.ext
	}
}

func (a Assigner) simpleName(rec *metadata.Record) string {
	return a.norm.SafeNameOr(rec.SimpleName(), naming.FallbackType)
}

func (a Assigner) namespaceDir(rec *metadata.Record) string {
	return a.norm.SafeDirNameOr(rec.Namespace, naming.FallbackNamespace)
}

func (a Assigner) assemblyDir(rec *metadata.Record) string {
	return a.norm.SafeDirNameOr(rec.FirstAssembly(), naming.FallbackAssembly)
}

// Inventory accumulates the distinct assembly and namespace names seen during
// discovery, for auxiliary output outside the core link pipeline.
type Inventory struct {
	Assemblies sets.Set[string]
	Namespaces sets.Set[string]
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{Assemblies: sets.New[string](), Namespaces: sets.New[string]()}
}

// Observe records the assembly and namespace names of one record.
func (inv *Inventory) Observe(rec *metadata.Record) {
	for _, asm := range rec.Assemblies {
		if asm != "" {
			inv.Assemblies.Add(asm)
		}
	}
	if rec.Namespace != "" {
		inv.Namespaces.Add(rec.Namespace)
	}
}

// CombineMembers rewrites every member-like record whose parent resolved to
// an already-assigned type-like record, so the member shares the parent's
// page with an anchor of its normalized simple name. This is a distinct
// second step: it must only run after the first assignment pass has completed
// for all records.
func CombineMembers(b *xref.TableBuilder, records []*metadata.Record, norm naming.Normalizer) int {
	byUID := make(map[string]*metadata.Record, len(records))
	for _, rec := range records {
		if rec.UID != "" {
			byUID[rec.UID] = rec
		}
	}

	combined := 0
	for _, rec := range records {
		if rec.UID == "" || !rec.Kind.IsMember() || rec.ParentUID == "" {
			continue
		}
		parent, ok := byUID[rec.ParentUID]
		if !ok || !parent.Kind.IsType() {
			continue
		}
		parentFile, ok := b.File(parent.UID)
		if !ok {
			continue
		}
		b.SetFile(rec.UID, xref.FileInfo{
			Path:   parentFile.Path,
			Anchor: norm.SafeNameOr(rec.SimpleName(), naming.FallbackType),
		})
		combined++
	}
	return combined
}
