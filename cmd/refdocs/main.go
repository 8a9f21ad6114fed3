package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/linkverify"
	"git.home.luguber.info/inful/refdocs/internal/manifest"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
	"git.home.luguber.info/inful/refdocs/internal/pipeline"
	"git.home.luguber.info/inful/refdocs/internal/version"
	"git.home.luguber.info/inful/refdocs/internal/watch"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"refdocs.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Generate struct {
		Output        string `short:"o" help:"Output directory override"`
		Watch         bool   `short:"w" help:"Regenerate when metadata inputs change"`
		MetricsListen string `help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	} `cmd:"" help:"Generate linked documents from API metadata"`

	Verify struct{} `cmd:"" help:"Resolve everything and report link problems without writing documents"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch kctx.Command() {
	case "generate":
		if CLI.Generate.Output != "" {
			cfg.Output.Directory = CLI.Generate.Output
		}
		if err := runGenerate(cfg, CLI.Generate.Watch); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "verify":
		broken, err := runVerify(cfg)
		if err != nil {
			slog.Error("Verification failed", "error", err)
			os.Exit(1)
		}
		if broken > 0 {
			os.Exit(2)
		}
	default:
		kctx.Exit(1)
	}
}

func runGenerate(cfg *config.Config, watchMode bool) error {
	opts, cleanup, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if addr := CLI.Generate.MetricsListen; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.HTTPHandler(buildRegistry)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics endpoint failed", "error", err)
			}
		}()
		defer srv.Close()
		slog.Info("Serving metrics", "addr", addr)
	}

	run := func(ctx context.Context) error {
		_, err := pipeline.New(cfg, opts...).Run(ctx)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	slog.Info("Watching for metadata changes; Ctrl-C to stop")
	err = watch.Run(ctx, inputDirs(cfg), 500*time.Millisecond, func() {
		if err := run(ctx); err != nil {
			slog.Error("Regeneration failed", "error", err)
		}
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// discardWriter drops output; verification only needs the resolved text.
type discardWriter struct{}

func (discardWriter) Write(string, []byte) error { return nil }

func runVerify(cfg *config.Config) (int, error) {
	cfg.Verify.Enabled = true
	cfg.Manifest.Path = "" // never touch the manifest on a dry run

	opts, cleanup, err := pipelineOptions(cfg)
	if err != nil {
		return 0, err
	}
	defer cleanup()
	opts = append(opts, pipeline.WithWriter(discardWriter{}))

	result, err := pipeline.New(cfg, opts...).Run(context.Background())
	if err != nil {
		return 0, err
	}
	slog.Info("Verification finished", "broken_links", result.BrokenLinks, "unresolved", result.Unresolved)
	return result.BrokenLinks + result.Unresolved, nil
}

// buildRegistry collects metrics for the whole process lifetime; watch-mode
// rebuilds accumulate into the same registry.
var buildRegistry = prom.NewRegistry()

func pipelineOptions(cfg *config.Config) ([]pipeline.Option, func(), error) {
	opts := []pipeline.Option{
		pipeline.WithRecorder(metrics.NewPrometheusRecorder(buildRegistry)),
	}
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	if cfg.Manifest.Path != "" {
		store, err := manifest.Open(cfg.Manifest.Path)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = store.Close() })
		opts = append(opts, pipeline.WithManifest(store))
	}

	if cfg.Verify.Enabled && cfg.Verify.NATS.Enabled {
		pub, err := linkverify.NewNATSPublisher(cfg.Verify.NATS.URL, cfg.Verify.NATS.Subject)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		cleanups = append(cleanups, pub.Close)
		opts = append(opts, pipeline.WithPublisher(pub))
	}

	return opts, cleanup, nil
}

// inputDirs derives the directories to watch from the input globs.
func inputDirs(cfg *config.Config) []string {
	seen := map[string]struct{}{}
	var dirs []string
	for _, g := range cfg.Input.Globs {
		dir := filepath.Dir(g)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
