// Package pipeline orchestrates one generation run as two strictly ordered
// phases: discovery (every uid gets its output path, including the
// combine-members rewrite) and resolution (documents are rendered and their
// markers rewritten against the frozen table). Resolution code can only be
// reached with a frozen table, so the ordering is structural, not
// conventional.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/diag"
	"git.home.luguber.info/inful/refdocs/internal/doctree"
	"git.home.luguber.info/inful/refdocs/internal/errors"
	"git.home.luguber.info/inful/refdocs/internal/layout"
	"git.home.luguber.info/inful/refdocs/internal/linkverify"
	"git.home.luguber.info/inful/refdocs/internal/manifest"
	"git.home.luguber.info/inful/refdocs/internal/metadata"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
	"git.home.luguber.info/inful/refdocs/internal/naming"
	"git.home.luguber.info/inful/refdocs/internal/render"
	"git.home.luguber.info/inful/refdocs/internal/xref"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRenderer replaces the default mustache renderer.
func WithRenderer(r render.Renderer) Option { return func(p *Pipeline) { p.renderer = r } }

// WithWriter replaces the default filesystem writer.
func WithWriter(w Writer) Option { return func(p *Pipeline) { p.writer = w } }

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(p *Pipeline) { p.recorder = r } }

// WithManifest attaches a build manifest store for skip-unchanged writes and
// stale-file reporting.
func WithManifest(s *manifest.Store) Option { return func(p *Pipeline) { p.manifest = s } }

// WithPublisher attaches a broken-link event publisher used when verification
// is enabled.
func WithPublisher(pub linkverify.Publisher) Option { return func(p *Pipeline) { p.publisher = pub } }

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option { return func(p *Pipeline) { p.log = log } }

// Pipeline runs metadata-to-documents generation.
type Pipeline struct {
	cfg       *config.Config
	renderer  render.Renderer
	writer    Writer
	recorder  metrics.Recorder
	manifest  *manifest.Store
	publisher linkverify.Publisher
	log       *slog.Logger
}

// New creates a Pipeline for one validated configuration.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		renderer: render.NewMustache(),
		writer:   OSWriter{Root: cfg.Output.Directory},
		recorder: metrics.NoopRecorder{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one run.
type Result struct {
	BuildID     string
	Records     int
	Combined    int
	Documents   int
	Skipped     int // unchanged per the manifest
	BrokenLinks int
	Unresolved  int
	Assemblies  []string
	Namespaces  []string
	Stale       []string
	Diagnostics []diag.Diagnostic
	Duration    time.Duration
}

type assignment struct {
	rec  *metadata.Record
	file xref.FileInfo
}

// Run executes the two phases. Configuration and input-shape problems abort;
// per-record and per-marker problems accumulate into Result.Diagnostics.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	buildID := uuid.NewString()
	log := p.log.With("build.id", buildID)
	diags := diag.NewCollector()

	set, err := metadata.LoadGlobs(p.cfg.Input.Globs)
	if err != nil {
		return nil, err
	}
	log.Info("metadata loaded", "records", len(set.Records), "references", len(set.References))

	norm := naming.NewNormalizer(p.cfg.CasePolicy())
	assigner := layout.NewAssigner(p.cfg.Strategy(), norm, p.cfg.Output.Extension)

	table, inventory, combined, err := p.discover(ctx, set, assigner, norm, diags, log)
	if err != nil {
		return nil, err
	}
	p.recorder.AddRecordsDiscovered(table.Len())
	p.recorder.AddMembersCombined(combined)

	result := &Result{
		BuildID:    buildID,
		Records:    table.Len(),
		Combined:   combined,
		Assemblies: inventory.Assemblies.Sorted(),
		Namespaces: inventory.Namespaces.Sorted(),
	}

	if err := p.resolve(ctx, set, table, buildID, diags, log, result); err != nil {
		return nil, err
	}

	if p.manifest != nil {
		stale, err := p.manifest.Stale(ctx, buildID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "manifest stale sweep failed")
		}
		for _, path := range stale {
			diags.Add(diag.Diagnostic{Kind: diag.StaleFile, Doc: path, Message: "no longer produced by the current plan"})
		}
		result.Stale = stale
	}

	result.Unresolved = diags.CountKind(diag.UnresolvedRef)
	result.BrokenLinks = diags.CountKind(diag.BrokenLink)
	result.Diagnostics = diags.Items()
	result.Duration = time.Since(start)

	p.recorder.ObserveBuildDuration(result.Duration)
	outcome := "success"
	if len(result.Diagnostics) > 0 {
		outcome = "warning"
	}
	p.recorder.IncBuildOutcome(outcome)

	log.Info("run finished",
		"documents", result.Documents,
		"records", result.Records,
		"combined", result.Combined,
		"unresolved", result.Unresolved,
		"broken_links", result.BrokenLinks,
		"duration", result.Duration)
	for _, line := range diags.Summary() {
		log.Warn("diagnostics: " + line)
	}
	return result, nil
}

// discover assigns every record's output path in parallel workers with a
// single merge point, then applies the combine-members rewrite as a distinct
// second step, registers external references, and freezes the table.
func (p *Pipeline) discover(ctx context.Context, set *metadata.Set, assigner layout.Assigner, norm naming.Normalizer, diags *diag.Collector, log *slog.Logger) (*xref.Table, *layout.Inventory, int, error) {
	phaseStart := time.Now()

	builder := xref.NewTableBuilder(fallbackRules(p.cfg))
	inventory := layout.NewInventory()

	jobs := make(chan *metadata.Record)
	results := make(chan assignment, 64)

	g, gctx := errgroup.WithContext(ctx)
	for range p.workers() {
		g.Go(func() error {
			for rec := range jobs {
				if rec.UID == "" {
					diags.Add(diag.Diagnostic{Kind: diag.RecordSkipped, Message: "record has no uid"})
					log.Warn("record skipped: empty uid", "name", rec.Name)
					continue
				}
				results <- assignment{rec: rec, file: xref.FileInfo{Path: assigner.PathFor(rec)}}
			}
			return nil
		})
	}
	go func() {
		defer close(jobs)
		for _, rec := range set.Records {
			select {
			case jobs <- rec:
			case <-gctx.Done():
				return
			}
		}
	}()
	go func() {
		_ = g.Wait()
		close(results)
	}()

	// Single merge point: table insertion and directory-name accumulation are
	// serialized here, never raced in the workers.
	for a := range results {
		builder.SetFile(a.rec.UID, a.file)
		inventory.Observe(a.rec)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, 0, errors.Wrap(err, errors.CategoryRuntime, errors.SeverityFatal, "discovery abandoned")
	}

	combined := 0
	if p.cfg.Output.CombineMembers {
		combined = layout.CombineMembers(builder, set.Records, norm)
	}
	for _, ref := range set.References {
		builder.AddReference(ref)
	}

	table := builder.Freeze()
	p.recorder.ObservePhaseDuration("discovery", time.Since(phaseStart))
	log.Info("discovery complete", "paths", table.Len(), "combined", combined)
	return table, inventory, combined, nil
}

// resolve renders every top-level type page and rewrites its markers against
// the frozen table. Documents are independent; they run fully in parallel.
func (p *Pipeline) resolve(ctx context.Context, set *metadata.Set, table *xref.Table, buildID string, diags *diag.Collector, log *slog.Logger, result *Result) error {
	phaseStart := time.Now()

	pageTemplate, err := p.pageTemplate()
	if err != nil {
		return err
	}

	opts := []xref.ProcessorOption{xref.WithRecorder(p.recorder)}
	if p.cfg.Templates.LinkTemplate != "" {
		opts = append(opts, xref.WithLinkTemplate(p.cfg.Templates.LinkTemplate))
	}
	if p.cfg.Templates.FallbackHref != "" {
		opts = append(opts, xref.WithFallbackHref(p.cfg.Templates.FallbackHref))
	}
	processor := xref.NewProcessor(table, p.renderer, diags, opts...)
	assembler := doctree.NewAssembler(set.Records, diags)

	var verifier *linkverify.Service
	if p.cfg.Verify.Enabled {
		verifier = linkverify.NewService(table.Paths(), buildID, diags, p.publisher)
	}

	var written, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for _, rec := range set.Records {
		if !rec.Kind.IsType() {
			continue
		}
		fi, ok := table.Lookup(rec.UID)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			node := assembler.Build(rec)
			node.SortMembers()

			body, err := p.renderer.Render(pageTemplate, node.ContextMap())
			if err != nil {
				diags.Add(diag.Diagnostic{Kind: diag.RenderFailed, UID: rec.UID, Doc: fi.Path, Message: err.Error()})
				log.Warn("page render failed", "uid", rec.UID, "doc", fi.Path, "error", err)
				return nil
			}
			resolved := []byte(processor.Process(fi.Path, body))

			if verifier != nil {
				verifier.VerifyDocument(fi.Path, resolved)
			}

			wrote, err := p.writeDocument(gctx, fi.Path, resolved, buildID)
			if err != nil {
				return err
			}
			if wrote {
				written.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, errors.CategoryRuntime, errors.SeverityFatal, "resolution abandoned")
	}

	result.Documents = int(written.Load())
	result.Skipped = int(skipped.Load())
	p.recorder.ObservePhaseDuration("resolution", time.Since(phaseStart))
	return nil
}

// writeDocument hands the resolved document to the writer, unless the
// manifest proves it unchanged since the last run.
func (p *Pipeline) writeDocument(ctx context.Context, path string, data []byte, buildID string) (bool, error) {
	if p.manifest == nil {
		if err := p.writer.Write(path, data); err != nil {
			return false, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "document write failed").WithContext("path", path)
		}
		return true, nil
	}

	hash := manifest.Hash(data)
	unchanged, err := p.manifest.Unchanged(ctx, path, hash)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "manifest lookup failed").WithContext("path", path)
	}
	if !unchanged {
		if err := p.writer.Write(path, data); err != nil {
			return false, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "document write failed").WithContext("path", path)
		}
	}
	if err := p.manifest.Record(ctx, path, hash, buildID); err != nil {
		return false, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "manifest record failed").WithContext("path", path)
	}
	return !unchanged, nil
}

func (p *Pipeline) pageTemplate() (string, error) {
	if p.cfg.Templates.PagePath == "" {
		return render.DefaultPageTemplate, nil
	}
	data, err := os.ReadFile(p.cfg.Templates.PagePath)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "cannot read page template").
			WithContext("path", p.cfg.Templates.PagePath)
	}
	return string(data), nil
}

func (p *Pipeline) workers() int {
	if p.cfg.Workers > 0 {
		return p.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func fallbackRules(cfg *config.Config) []xref.FallbackRule {
	rules := make([]xref.FallbackRule, 0, len(cfg.Xref.Fallbacks))
	for _, fb := range cfg.Xref.Fallbacks {
		rules = append(rules, xref.FallbackRule{Prefix: fb.Prefix, URLTemplate: fb.URLTemplate})
	}
	return rules
}
